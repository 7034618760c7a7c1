package extract

import "strings"

// domainKeywords mark document sections worth keeping for line-item
// extraction; schedule and bill-of-quantity sections are kept too.
var domainKeywords = []string{
	"technical specification",
	"scope of supply",
	"cable specification",
	"electrical",
	"xlpe",
	"power cable",
	"control cable",
	"instrumentation",
}

const minFilteredChars = 300

// FilterRelevantText keeps only paragraphs that mention domain
// vocabulary, trimming boilerplate before the single-call item
// extraction. When too little text survives, the original text is
// returned so a sparse document is not filtered into nothing.
func FilterRelevantText(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	var kept []string
	for _, p := range paragraphs {
		lower := strings.ToLower(p)
		if containsAny(lower, domainKeywords) ||
			strings.Contains(lower, "schedule") ||
			strings.Contains(lower, "bill of quantity") {
			kept = append(kept, p)
		}
	}
	filtered := strings.Join(kept, "\n\n")
	if len(strings.TrimSpace(filtered)) < minFilteredChars {
		return text
	}
	return filtered
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
