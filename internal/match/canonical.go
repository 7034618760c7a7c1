package match

import (
	"regexp"
	"strings"
)

// Canonical attribute keys, in the priority order the routing summary
// advertises to the matcher.
const (
	AttrVoltage    = "voltage"
	AttrConductor  = "conductor_material"
	AttrCoreConfig = "core_configuration"
	AttrSizeSqmm   = "size_sqmm"
	AttrInsulation = "insulation_type"
	AttrStandards  = "standards"
)

// SpecPriority is the attribute order advertised in routing summaries.
func SpecPriority() []string {
	return []string{AttrVoltage, AttrConductor, AttrCoreConfig, AttrSizeSqmm, AttrInsulation, AttrStandards}
}

var (
	reVoltage    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*kv\b`)
	reCoreConfig = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*core`)
	reSizeSqmm   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:sq\.?\s*mm|sqmm|mm2|mm²)`)
	reStandard   = regexp.MustCompile(`\b(is|iec|bs|astm)[\s-]*(\d+)`)
)

var conductorWords = map[string]string{
	"aluminium": "aluminium",
	"aluminum":  "aluminium",
	"al":        "aluminium",
	"copper":    "copper",
	"cu":        "copper",
}

var insulationWords = []string{"xlpe", "pvc", "epr", "frls", "lsoh"}

// CanonicalizeSpecs normalizes a free-text requirement into an
// attribute map keyed by the canonical attribute names. Attributes the
// text never mentions are absent, not empty.
func CanonicalizeSpecs(text string) map[string]string {
	lower := strings.ToLower(text)
	out := make(map[string]string)

	if m := reVoltage.FindStringSubmatch(lower); m != nil {
		out[AttrVoltage] = m[1] + "kv"
	}
	if m := reCoreConfig.FindStringSubmatch(lower); m != nil {
		out[AttrCoreConfig] = m[1] + "core"
	}
	if m := reSizeSqmm.FindStringSubmatch(lower); m != nil {
		out[AttrSizeSqmm] = m[1] + "sqmm"
	}

	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if c, ok := conductorWords[tok]; ok {
			out[AttrConductor] = c
			break
		}
	}

	for _, ins := range insulationWords {
		if strings.Contains(lower, ins) {
			out[AttrInsulation] = ins
			break
		}
	}

	if ms := reStandard.FindAllStringSubmatch(lower, -1); ms != nil {
		var stds []string
		for _, m := range ms {
			stds = append(stds, m[1]+" "+m[2])
		}
		out[AttrStandards] = strings.Join(stds, ",")
	}

	return out
}

// NormalizeSpecValue collapses a catalog spec value to the same shape
// CanonicalizeSpecs emits, so value comparison is whitespace- and
// case-insensitive.
func NormalizeSpecValue(key, value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	switch key {
	case AttrVoltage:
		if m := reVoltage.FindStringSubmatch(lower); m != nil {
			return m[1] + "kv"
		}
	case AttrCoreConfig:
		if m := reCoreConfig.FindStringSubmatch(lower); m != nil {
			return m[1] + "core"
		}
	case AttrSizeSqmm:
		if m := reSizeSqmm.FindStringSubmatch(lower); m != nil {
			return m[1] + "sqmm"
		}
	case AttrConductor:
		if c, ok := conductorWords[lower]; ok {
			return c
		}
	}
	return strings.Join(strings.Fields(lower), " ")
}
