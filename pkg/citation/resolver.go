package citation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/japaniel/veselinovanegex/pkg/bib"
)

// Diagnostic records a citation that could not be matched to the bibliography.
type Diagnostic struct {
	LanguageID string
	Field      string
	Raw        string
}

// Stats counts resolution outcomes.
type Stats struct {
	Resolved   int
	Unresolved int
	Personal   int
}

// Resolution is the outcome for one source field.
type Resolution struct {
	// Sources are "{bib-id}" or "{bib-id}[{pages}]" references.
	Sources []string
	// Unmatched are the raw texts that produced no reference: personal
	// communications and unresolved citations.
	Unmatched []string
}

// Resolver matches citations against a bibliography and remembers which
// entries were cited.
type Resolver struct {
	bib    *bib.Bibliography
	norm   *Normalizer
	logger *slog.Logger

	cited       []bib.Entry
	citedIDs    map[string]bool
	diagnostics []Diagnostic
	stats       Stats
}

// NewResolver creates a resolver. A nil normalizer uses DefaultCorrections and
// a nil logger uses slog.Default().
func NewResolver(b *bib.Bibliography, n *Normalizer, logger *slog.Logger) *Resolver {
	if n == nil {
		n = defaultNormalizer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		bib:      b,
		norm:     n,
		logger:   logger,
		citedIDs: make(map[string]bool),
	}
}

// Resolve turns a source field into bibliography references. Unresolved
// citations are logged, recorded as diagnostics and left out; they never fail
// the run.
func (r *Resolver) Resolve(languageID, field, text string) Resolution {
	var res Resolution
	for _, part := range Split(text) {
		c := r.norm.Parse(part)
		if c.Personal {
			r.stats.Personal++
			res.Unmatched = append(res.Unmatched, c.Raw)
			continue
		}
		if c.Key == "" {
			continue
		}

		entry, ok := r.bib.ByCitationKey(c.Key)
		if !ok {
			r.stats.Unresolved++
			r.diagnostics = append(r.diagnostics, Diagnostic{LanguageID: languageID, Field: field, Raw: c.Raw})
			r.logger.Warn("Unresolved citation",
				"language", languageID,
				"field", field,
				"raw", c.Raw,
				"key", c.Key)
			res.Unmatched = append(res.Unmatched, c.Raw)
			continue
		}

		r.stats.Resolved++
		r.cite(entry)
		res.Sources = append(res.Sources, SourceRef(entry.ID, c.Pages))
	}
	return res
}

// Cite marks an entry as used without going through citation text.
func (r *Resolver) Cite(e bib.Entry) {
	r.cite(e)
}

func (r *Resolver) cite(e bib.Entry) {
	if r.citedIDs[e.ID] {
		return
	}
	r.citedIDs[e.ID] = true
	r.cited = append(r.cited, e)
}

// Cited returns the cited entries in first-cited order.
func (r *Resolver) Cited() []bib.Entry {
	return append([]bib.Entry(nil), r.cited...)
}

// Diagnostics returns every unresolved citation seen so far.
func (r *Resolver) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), r.diagnostics...)
}

// Stats returns the resolution counters.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// SourceRef formats a CLDF source reference.
func SourceRef(id, pages string) string {
	if pages == "" {
		return id
	}
	return fmt.Sprintf("%s[%s]", id, pages)
}

// ParseSourceRef splits a reference made by SourceRef into ID and pages.
func ParseSourceRef(ref string) (id, pages string) {
	if i := strings.IndexByte(ref, '['); i >= 0 && strings.HasSuffix(ref, "]") {
		return ref[:i], ref[i+1 : len(ref)-1]
	}
	return ref, ""
}
