// Package citation parses free-text "Author Year: pages" references found in
// survey rows and resolves them against a bibliography.
package citation

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Correction is a literal, case-sensitive substitution applied before matching.
type Correction struct {
	From string
	To   string
}

// DefaultCorrections fixes misspellings known to occur in the survey.
var DefaultCorrections = []Correction{
	{From: "MIchael", To: "Michael"},
	{From: "MIestam", To: "Miestam"},
	{From: "Brandup", To: "Brandrup"},
}

var (
	reSpaces        = regexp.MustCompile(`\s+`)
	reAnd           = regexp.MustCompile(`(\s+and)+\s+`)
	reRepeatedAmp   = regexp.MustCompile(`&(\s*&)+`)
	reAmpBeforeYear = regexp.MustCompile(`\s*&\s*(\d{4}[a-z]?)$`)
)

// Normalizer turns citation text into the citation-key shape "Surname & Surname Year".
type Normalizer struct {
	corrections *strings.Replacer
}

// NewNormalizer returns a Normalizer applying the given corrections.
func NewNormalizer(corrections []Correction) *Normalizer {
	pairs := make([]string, 0, 2*len(corrections))
	for _, c := range corrections {
		if c.From == "" {
			continue
		}
		pairs = append(pairs, c.From, c.To)
	}
	return &Normalizer{corrections: strings.NewReplacer(pairs...)}
}

var defaultNormalizer = NewNormalizer(DefaultCorrections)

// Normalize uses the default corrections.
func Normalize(s string) string {
	return defaultNormalizer.Normalize(s)
}

// Normalize strips parentheses, applies corrections, treats commas and the
// word "and" as author separators ("&"), collapses whitespace and composes
// Unicode to NFC. Normalize(Normalize(s)) == Normalize(s).
func (n *Normalizer) Normalize(s string) string {
	s = strings.NewReplacer("(", "", ")", "").Replace(s)
	s = n.corrections.Replace(s)
	s = strings.ReplaceAll(s, ",", " & ")
	s = collapse(s)
	s = reAnd.ReplaceAllString(s, " & ")
	s = reRepeatedAmp.ReplaceAllString(s, "&")
	s = strings.TrimSpace(strings.Trim(s, "&"))
	s = reAmpBeforeYear.ReplaceAllString(s, " $1")
	return norm.NFC.String(collapse(s))
}

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// Citation is one parsed reference.
type Citation struct {
	// Raw is the text the citation was parsed from.
	Raw string
	// Key is the normalised citation key; empty when there is nothing to look up.
	Key string
	// Pages is the trimmed text after the first colon, or "".
	Pages string
	// Personal marks a personal communication, which has no bibliography entry.
	Personal bool
}

// Parse parses one citation with the default corrections.
func Parse(text string) Citation {
	return defaultNormalizer.Parse(text)
}

// Parse splits text on the first colon into citation and pages and
// normalises the citation part. Personal communications ("p.c.", spaces
// ignored) yield an empty Key with Personal set.
func (n *Normalizer) Parse(text string) Citation {
	c := Citation{Raw: strings.TrimSpace(text)}
	if c.Raw == "" {
		return c
	}

	ref, pages, _ := strings.Cut(c.Raw, ":")
	key := n.Normalize(ref)
	if strings.Contains(strings.ReplaceAll(key, " ", ""), "p.c.") {
		c.Personal = true
		return c
	}

	c.Key = key
	if c.Key != "" {
		c.Pages = strings.TrimSpace(pages)
	}
	return c
}

// Split breaks a source field holding several ";"-separated citations into
// its non-empty parts.
func Split(field string) []string {
	var out []string
	for _, part := range strings.Split(field, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
