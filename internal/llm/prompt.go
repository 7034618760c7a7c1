package llm

import (
	"fmt"
	"strings"
)

// BuildFieldPrompt composes a single-field extraction prompt over one
// document chunk. Concise and JSON-only: the prompts are tuned for
// small instruction models.
func BuildFieldPrompt(field, description, chunk string) string {
	return fmt.Sprintf(`Extract ONLY this field from the RFP text below.

Field: %s
Description: %s

Rules:
- Return ONLY valid JSON
- No explanations or markdown
- If not found, return "Not Found"

RFP Text:
%s

JSON Output:
{"%s": ""}`, field, description, chunk, field)
}

// BuildItemsPrompt composes the single-call line-item extraction
// prompt: one object per physical material item, declared domain only,
// no hallucination, no merging.
func BuildItemsPrompt(materialType string, excludedDomains []string, text string) string {
	var b strings.Builder
	b.WriteString("You are extracting ")
	b.WriteString(strings.ToUpper(materialType))
	b.WriteString(" material line items ONLY.\n\n")

	b.WriteString("STRICT RULES:\n")
	b.WriteString("- Extract ONLY items belonging to the declared material domain\n")
	if len(excludedDomains) > 0 {
		b.WriteString("- DO NOT extract " + strings.Join(excludedDomains, ", ") + " items; IGNORE them completely\n")
	}
	b.WriteString("- DO NOT infer or hallucinate\n")
	b.WriteString("- DO NOT merge different items\n")
	b.WriteString("- DO NOT return agreements, sections, titles, eligibility, or commercial text\n")
	b.WriteString("- DO NOT wrap in markdown, DO NOT add explanations\n")
	b.WriteString("- If no material items exist, return []\n\n")

	b.WriteString(`Return ONLY a JSON ARRAY in this format:
[
  {
    "item_name": "XLPE Power Cable 11kV",
    "required_technical_specs": "Voltage: 11kV, Conductor: Aluminium, Insulation: XLPE, Standard: IS 7098"
  }
]

DOCUMENT TEXT:
`)
	b.WriteString(text)
	b.WriteString("\n\nJSON ARRAY ONLY:\n")
	return b.String()
}
