package negex

import (
	"strings"

	"github.com/japaniel/veselinovanegex/pkg/citation"
	"github.com/japaniel/veselinovanegex/pkg/lookup"
	"github.com/japaniel/veselinovanegex/pkg/raw"
)

// Column is one surveyed parameter column of the raw sheet.
type Column struct {
	// Name is the raw column header, which is also the parameter's original name.
	Name string
	// SourceField names the column holding free-text citations; empty means
	// the value cites the dataset's own publication.
	SourceField string
	value       func(raw.Row) string
	source      func(raw.Row) string
}

// Columns are the surveyed parameters, in output order.
var Columns = []Column{
	{
		Name:        raw.ColSN,
		SourceField: raw.ColSNSource,
		value:       func(r raw.Row) string { return r.SN },
		source:      func(r raw.Row) string { return r.SNSource },
	},
	{
		Name:        raw.ColNegExForm,
		SourceField: raw.ColNegExFormSrc,
		value:       func(r raw.Row) string { return r.NegExForm },
		source:      func(r raw.Row) string { return r.NegExFormSource },
	},
	{
		Name:  raw.ColNegExType,
		value: func(r raw.Row) string { return r.NegExType },
	},
}

// parametersFor lists the dictionary's parameters plus a bare entry for any
// surveyed column the dictionary does not know, so every value has a parameter.
func parametersFor(params *lookup.Parameters) []lookup.Parameter {
	out := params.All()
	for _, col := range Columns {
		if _, ok := params.ByOriginalName(col.Name); !ok {
			out = append(out, lookup.Parameter{ID: col.Name, Name: col.Name, OriginalName: col.Name})
		}
	}
	return out
}

// ParameterID is the dictionary ID of a surveyed column, or the column name.
func ParameterID(params *lookup.Parameters, column string) string {
	if p, ok := params.ByOriginalName(column); ok {
		return p.ID
	}
	return column
}

type valueBuilder struct {
	params   *lookup.Parameters
	codes    *lookup.Codes
	resolver *citation.Resolver
	selfID   string
	stats    *Stats
}

// build returns exactly one value per surveyed column.
func (b *valueBuilder) build(row raw.Row, languageID string) []Value {
	values := make([]Value, 0, len(Columns))
	for _, col := range Columns {
		pid := ParameterID(b.params, col.Name)
		original := strings.TrimSpace(col.value(row))

		v := Value{
			ID:          languageID + "-" + col.Name,
			LanguageID:  languageID,
			ParameterID: pid,
			Value:       original,
			Comment:     strings.TrimSpace(row.Comment),
		}

		if code, ok := b.codes.Lookup(pid, original); ok {
			v.CodeID = code.ID
			v.Value = code.Name
		} else if b.stats != nil {
			b.stats.UnmatchedCodes[pid]++
		}

		if col.SourceField == "" {
			if b.selfID != "" {
				v.Source = []string{b.selfID}
			}
		} else {
			res := b.resolver.Resolve(languageID, col.SourceField, col.source(row))
			v.Source = res.Sources
			v.SourceComment = strings.Join(res.Unmatched, "; ")
		}

		values = append(values, v)
	}
	return values
}

// BuildValues builds the values of a single row; exposed for callers that
// assemble datasets incrementally.
func BuildValues(row raw.Row, languageID string, params *lookup.Parameters, codes *lookup.Codes, resolver *citation.Resolver, selfID string) []Value {
	b := valueBuilder{params: params, codes: codes, resolver: resolver, selfID: selfID}
	return b.build(row, languageID)
}
