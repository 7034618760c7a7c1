// Package match scores extracted line items against the product
// catalog and classifies the quality of each best match.
package match

import (
	"regexp"
	"strings"
)

// Domain is the coarse vocabulary bucket of a line item, used to keep
// RF/coaxial requirements away from power-cable SKUs and vice versa.
type Domain int

const (
	DomainNeutral Domain = iota // matches neither vocabulary; unfiltered
	DomainRF
	DomainPower
)

func (d Domain) String() string {
	switch d {
	case DomainRF:
		return "rf"
	case DomainPower:
		return "power"
	default:
		return "neutral"
	}
}

// Short tokens use word boundaries so "rf" does not fire inside
// "performance"; unit suffixes like kv match "11kV".
var (
	reRFVocab    = regexp.MustCompile(`mhz|ghz|vswr|impedance|\bpim\b|\brf\b|n male|coax`)
	rePowerVocab = regexp.MustCompile(`kv\b|xlpe|sqmm|\bht\b|\blt\b`)

	reRFCategory    = regexp.MustCompile(`\brf\b|coax|signal|flex`)
	rePowerCategory = regexp.MustCompile(`power|xlpe|\bht\b|\blt\b`)
)

// DetectDomain classifies an item's combined text. RF vocabulary wins
// when both appear, mirroring the rejection order of the matcher.
func DetectDomain(text string) Domain {
	lower := strings.ToLower(text)
	if reRFVocab.MatchString(lower) {
		return DomainRF
	}
	if rePowerVocab.MatchString(lower) {
		return DomainPower
	}
	return DomainNeutral
}

// CategoryRelevant reports whether a catalog category may be scored
// against an item of the given domain. Neutral items pass everything;
// uncategorized entries are never considered relevant to a domain item.
func CategoryRelevant(d Domain, category string) bool {
	if d == DomainNeutral {
		return true
	}
	if category == "" {
		return false
	}
	lower := strings.ToLower(category)
	switch d {
	case DomainRF:
		return reRFCategory.MatchString(lower)
	case DomainPower:
		return rePowerCategory.MatchString(lower)
	}
	return false
}
