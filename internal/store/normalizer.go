package store

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	tldSuffixRe   = regexp.MustCompile(`(?i)\.(com|ca|net|org|co|io|shop|store)$`)
	supercentreRe = regexp.MustCompile(`(?i)\bsupercentre\b|\bsupercenter\b`)
	corpSuffixRe  = regexp.MustCompile(`(?i)[,\s]+(inc|ltd|corp)\.?$`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Normalizer canonicalizes raw merchant labels and flags merchants without a
// physical retail presence. Build one with NewNormalizer and share it; it is
// read-only after construction and safe for concurrent use.
type Normalizer struct {
	overrides  []BrandOverride
	onlineOnly []*regexp.Regexp
}

// NewNormalizer compiles the rule set. Online-only patterns are anchored
// expressions and are compiled case-insensitively.
func NewNormalizer(rules RuleSet) (*Normalizer, error) {
	n := &Normalizer{
		overrides: rules.Overrides,
	}
	for _, pattern := range rules.OnlineOnly {
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling online-only pattern %q: %w", pattern, err)
		}
		n.onlineOnly = append(n.onlineOnly, re)
	}
	return n, nil
}

// Normalize turns a raw merchant label into its canonical display name.
// The transformation is idempotent: a canonical name maps to itself.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = tldSuffixRe.ReplaceAllString(s, "")
	s = supercentreRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = corpSuffixRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))

	lower := strings.ToLower(s)
	for _, o := range n.overrides {
		if strings.Contains(lower, strings.ToLower(o.Match)) {
			return o.Display
		}
	}

	// cases.Caser carries transform state, so a fresh one is built per call
	// rather than shared across request goroutines.
	return cases.Title(language.English).String(lower)
}

// IsOnlineOnly reports whether a merchant is known to have no physical
// stores. Both the raw label and the canonical name are checked, because
// normalization can destroy or introduce the distinguishing token.
func (n *Normalizer) IsOnlineOnly(raw, canonical string) bool {
	raw = strings.TrimSpace(raw)
	for _, re := range n.onlineOnly {
		if re.MatchString(raw) || re.MatchString(canonical) {
			return true
		}
	}
	return false
}
