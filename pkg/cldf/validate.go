package cldf

import (
	"errors"
	"fmt"

	"github.com/japaniel/veselinovanegex/pkg/citation"
	"github.com/japaniel/veselinovanegex/pkg/negex"
)

// ErrIntegrity marks referential-integrity violations.
var ErrIntegrity = errors.New("integrity violation")

// SourceKey strips the "[pages]" suffix from a source reference.
func SourceKey(ref string) string {
	id, _ := citation.ParseSourceRef(ref)
	return id
}

// Validate checks primary-key uniqueness and every foreign key of the
// dataset. All violations are reported together.
func Validate(ds *negex.Dataset) error {
	var errs []error
	violation := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrIntegrity}, args...)...))
	}

	languages := make(map[string]bool, len(ds.Languages))
	for _, l := range ds.Languages {
		if languages[l.ID] {
			violation("duplicate language %q", l.ID)
		}
		languages[l.ID] = true
	}

	parameters := make(map[string]bool, len(ds.Parameters))
	for _, p := range ds.Parameters {
		if parameters[p.ID] {
			violation("duplicate parameter %q", p.ID)
		}
		parameters[p.ID] = true
	}

	codes := make(map[string]bool, len(ds.Codes))
	for _, c := range ds.Codes {
		if codes[c.ID] {
			violation("duplicate code %q", c.ID)
		}
		codes[c.ID] = true
		if !parameters[c.ParameterID] {
			violation("code %q references unknown parameter %q", c.ID, c.ParameterID)
		}
	}

	sources := make(map[string]bool, len(ds.Sources))
	for _, s := range ds.Sources {
		if sources[s.ID] {
			violation("duplicate source %q", s.ID)
		}
		sources[s.ID] = true
	}

	values := make(map[string]bool, len(ds.Values))
	for _, v := range ds.Values {
		if values[v.ID] {
			violation("duplicate value %q", v.ID)
		}
		values[v.ID] = true
		if !languages[v.LanguageID] {
			violation("value %q references unknown language %q", v.ID, v.LanguageID)
		}
		if !parameters[v.ParameterID] {
			violation("value %q references unknown parameter %q", v.ID, v.ParameterID)
		}
		if v.CodeID != "" && !codes[v.CodeID] {
			violation("value %q references unknown code %q", v.ID, v.CodeID)
		}
		for _, ref := range v.Source {
			if !sources[SourceKey(ref)] {
				violation("value %q references unknown source %q", v.ID, ref)
			}
		}
	}

	return errors.Join(errs...)
}
