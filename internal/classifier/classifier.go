// Package classifier decides whether a playlist entry belongs to the
// configured content policy, using keyword and attribute rules.
package classifier

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/alorle/iptv-checker/internal/entry"
)

// Rules is the configurable part of a Policy.
type Rules struct {
	// Exclude tokens reject an entry outright
	Exclude []string `yaml:"exclude" toml:"exclude"`
	// Include tokens accept an entry unless an Exclude token matched
	Include []string `yaml:"include" toml:"include"`
	// AttributeKeys are the directive attributes checked against Codes
	AttributeKeys []string `yaml:"attribute_keys" toml:"attribute_keys"`
	// Codes is the allow-list of two-letter country/language codes
	Codes []string `yaml:"codes" toml:"codes"`
}

// Reason explains which rule produced a decision.
type Reason string

const (
	ReasonExcluded  Reason = "excluded"
	ReasonIncluded  Reason = "included"
	ReasonAttribute Reason = "attribute"
	ReasonNoSignal  Reason = "no_signal"
)

// Decision is the outcome of classifying one entry.
type Decision struct {
	Accepted bool
	Reason   Reason
	Match    string
}

// Policy classifies entries. It is immutable after construction and safe
// for concurrent use.
type Policy struct {
	exclude []string
	include []string
	keys    []string
	codes   map[string]bool
}

// New builds a Policy from rules. Tokens are folded once here.
func New(r Rules) *Policy {
	p := &Policy{
		exclude: foldAll(r.Exclude),
		include: foldAll(r.Include),
		codes:   make(map[string]bool),
	}
	for _, k := range r.AttributeKeys {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && !slices.Contains(p.keys, k) {
			p.keys = append(p.keys, k)
		}
	}
	for _, c := range r.Codes {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			p.codes[c] = true
		}
	}
	return p
}

// Classify reports whether the entry is in scope.
func (p *Policy) Classify(e entry.Entry) bool {
	return p.Decide(e).Accepted
}

// Decide applies the rules in order, first match wins:
// exclusion tokens, inclusion tokens, attribute codes, then reject.
func (p *Policy) Decide(e entry.Entry) Decision {
	text := fold(e.RawLine() + " " + e.URL())

	for _, tok := range p.exclude {
		if strings.Contains(text, tok) {
			return Decision{Accepted: false, Reason: ReasonExcluded, Match: tok}
		}
	}

	for _, tok := range p.include {
		if strings.Contains(text, tok) {
			return Decision{Accepted: true, Reason: ReasonIncluded, Match: tok}
		}
	}

	// Keys are checked in configured order so the reported match is stable.
	attrs := e.Attributes()
	for _, key := range p.keys {
		value, ok := attrs[key]
		if !ok {
			continue
		}
		for _, code := range splitCodes(value) {
			if p.codes[code] {
				return Decision{Accepted: true, Reason: ReasonAttribute, Match: key + "=" + code}
			}
		}
	}

	return Decision{Accepted: false, Reason: ReasonNoSignal}
}

// Filter keeps the accepted entries in their original order and returns how
// many were dropped.
func (p *Policy) Filter(entries []entry.Entry) ([]entry.Entry, int) {
	kept := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if p.Classify(e) {
			kept = append(kept, e)
		}
	}
	return kept, len(entries) - len(kept)
}

// fold lower-cases s and strips combining marks so that "México" and
// "mexico" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func foldAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		out = append(out, fold(tok))
	}
	return out
}

func splitCodes(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || unicode.IsSpace(r)
	})
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return parts
}
