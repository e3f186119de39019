package bib

import (
	"os"
	"sort"

	"github.com/nickng/bibtex"
)

// Format renders entries as BibTeX, in the given order.
func Format(entries []Entry) string {
	out := bibtex.NewBibTex()
	for _, e := range entries {
		be := bibtex.NewBibEntry(e.Type, e.ID)
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			be.AddField(name, bibtex.NewBibConst(e.Fields[name]))
		}
		out.AddEntry(be)
	}
	return out.PrettyString()
}

// WriteFile writes entries to path as BibTeX.
func WriteFile(path string, entries []Entry) error {
	return os.WriteFile(path, []byte(Format(entries)), 0o644)
}
