// Package negex turns the NegEx survey rows and the curator's lookup tables
// into the entity collections of a CLDF StructureDataset.
package negex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/japaniel/veselinovanegex/pkg/bib"
	"github.com/japaniel/veselinovanegex/pkg/citation"
	"github.com/japaniel/veselinovanegex/pkg/glottolog"
	"github.com/japaniel/veselinovanegex/pkg/lookup"
	"github.com/japaniel/veselinovanegex/pkg/raw"
)

// Version returns the current version of the package.
func Version() string { return "0.2.0" }

// ErrDuplicateLanguage is returned when two rows resolve to the same language ID.
var ErrDuplicateLanguage = errors.New("duplicate language ID")

// Language is one row of the LanguageTable.
type Language struct {
	ID           string
	Name         string
	ISO639P3code string
	Glottocode   string
	Latitude     *float64
	Longitude    *float64
}

// Value is one row of the ValueTable.
type Value struct {
	ID            string
	LanguageID    string
	ParameterID   string
	CodeID        string
	Value         string
	Source        []string
	SourceComment string
	Comment       string
}

// Dataset is the result of one transformation run.
type Dataset struct {
	Languages   []Language
	Parameters  []lookup.Parameter
	Codes       []lookup.Code
	Values      []Value
	Sources     []bib.Entry
	Diagnostics []citation.Diagnostic
	Stats       Stats
}

// Stats summarises degraded lookups of a run.
type Stats struct {
	Rows               int
	UnmatchedLanguoids int
	// UnmatchedCodes counts values without a code, per parameter ID.
	UnmatchedCodes map[string]int
	Citations      citation.Stats
}

// LanguoidProvider looks up external language metadata by ISO 639-3 code.
type LanguoidProvider interface {
	Languoid(iso string) (glottolog.Languoid, bool)
}

// Inputs bundles everything a run reads.
type Inputs struct {
	Rows        []raw.Row
	Corrections lookup.LanguageCorrections
	Parameters  *lookup.Parameters
	Codes       *lookup.Codes
	Languoids   LanguoidProvider
	Resolver    *citation.Resolver
	// SelfCitation is the dataset's own publication, cited by NegExType values.
	SelfCitation bib.Entry
}

// Build produces the dataset. Lookup misses degrade (raw ISO code, null
// Glottocode, raw value text, omitted citation); only structural problems
// such as duplicate language IDs are errors.
func Build(in Inputs) (*Dataset, error) {
	if in.Parameters == nil || in.Codes == nil || in.Resolver == nil {
		return nil, fmt.Errorf("negex: parameters, codes and resolver are required")
	}

	ds := &Dataset{
		Stats: Stats{Rows: len(in.Rows), UnmatchedCodes: map[string]int{}},
	}

	// The dataset's own publication is always listed first.
	in.Resolver.Cite(in.SelfCitation)

	languages, unmatched, err := buildLanguages(in.Rows, in.Corrections, in.Languoids)
	if err != nil {
		return nil, err
	}
	ds.Languages = languages
	ds.Stats.UnmatchedLanguoids = unmatched

	ds.Parameters = parametersFor(in.Parameters)
	ds.Codes = in.Codes.All()

	b := valueBuilder{
		params:   in.Parameters,
		codes:    in.Codes,
		resolver: in.Resolver,
		selfID:   in.SelfCitation.ID,
		stats:    &ds.Stats,
	}
	for i, row := range in.Rows {
		ds.Values = append(ds.Values, b.build(row, languages[i].ID)...)
	}

	ds.Sources = in.Resolver.Cited()
	ds.Diagnostics = in.Resolver.Diagnostics()
	ds.Stats.Citations = in.Resolver.Stats()
	return ds, nil
}

// BuildLanguages resolves one language per row, in row order.
func BuildLanguages(rows []raw.Row, corrections lookup.LanguageCorrections, languoids LanguoidProvider) ([]Language, error) {
	languages, _, err := buildLanguages(rows, corrections, languoids)
	return languages, err
}

func buildLanguages(rows []raw.Row, corrections lookup.LanguageCorrections, languoids LanguoidProvider) ([]Language, int, error) {
	languages := make([]Language, 0, len(rows))
	seen := make(map[string]int, len(rows))
	unmatched := 0

	for _, row := range rows {
		id := LanguageID(row, corrections)
		if id == "" {
			return nil, 0, fmt.Errorf("line %d (%s): no ISO code and no correction", row.Line, row.Label)
		}
		if prev, dup := seen[id]; dup {
			return nil, 0, fmt.Errorf("%w %q on lines %d and %d", ErrDuplicateLanguage, id, prev, row.Line)
		}
		seen[id] = row.Line

		lang := Language{
			ID:           id,
			Name:         row.Label,
			ISO639P3code: id,
		}
		if languoids != nil {
			if l, ok := languoids.Languoid(id); ok {
				lang.Glottocode = l.Glottocode
				lang.Latitude = l.Latitude
				lang.Longitude = l.Longitude
			} else {
				unmatched++
			}
		} else {
			unmatched++
		}
		languages = append(languages, lang)
	}
	return languages, unmatched, nil
}

// LanguageID is the corrected code for the row's label, else its own ISO code.
func LanguageID(row raw.Row, corrections lookup.LanguageCorrections) string {
	if code, ok := corrections.Lookup(row.Label); ok {
		return code
	}
	return strings.TrimSpace(row.ISO)
}
