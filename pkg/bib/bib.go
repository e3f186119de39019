// Package bib loads BibTeX bibliographies and indexes them by citation key,
// the normalised "Surname & Surname Year" string used to match free-text references.
package bib

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Entry is one bibliography record.
type Entry struct {
	ID   string
	Type string
	// Fields are keyed by lower-case BibTeX field name.
	Fields map[string]string
}

// Field returns a field value or "".
func (e Entry) Field(name string) string {
	return e.Fields[name]
}

var (
	reAuthorSep = regexp.MustCompile(`\s+and\s+`)
	reSpaces    = regexp.MustCompile(`\s+`)
)

// CitationKey joins the authors' surnames with " & " and appends the year,
// e.g. "Smith, J. and Doe, A." + 1990 gives "Smith & Doe 1990".
// Editors stand in when there is no author. It returns "" when either part is missing.
func (e Entry) CitationKey() string {
	names := e.Field("author")
	if strings.TrimSpace(names) == "" {
		names = e.Field("editor")
	}
	year := collapse(stripBraces(e.Field("year")))
	if strings.TrimSpace(names) == "" || year == "" {
		return ""
	}

	var surnames []string
	for _, person := range reAuthorSep.Split(collapse(stripBraces(names)), -1) {
		if s := Surname(person); s != "" {
			surnames = append(surnames, s)
		}
	}
	if len(surnames) == 0 {
		return ""
	}
	return norm.NFC.String(strings.Join(surnames, " & ") + " " + year)
}

// Surname is the text before the first comma of "Last, First", or the last
// word of "First Last".
func Surname(person string) string {
	person = strings.TrimSpace(person)
	if i := strings.Index(person, ","); i >= 0 {
		return strings.TrimSpace(person[:i])
	}
	fields := strings.Fields(person)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func stripBraces(s string) string {
	return strings.NewReplacer("{", "", "}", "").Replace(s)
}

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// Bibliography indexes entries by ID and by citation key.
type Bibliography struct {
	entries []Entry
	byID    map[string]int
	byKey   map[string]int
}

// New indexes entries. When two entries share a citation key the first one wins.
func New(entries []Entry) *Bibliography {
	b := &Bibliography{
		entries: entries,
		byID:    make(map[string]int, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, dup := b.byID[e.ID]; !dup {
			b.byID[e.ID] = i
		}
		key := e.CitationKey()
		if key == "" {
			continue
		}
		if prev, dup := b.byKey[key]; dup {
			slog.Debug("Ambiguous citation key, keeping first entry",
				"key", key, "kept", entries[prev].ID, "ignored", e.ID)
			continue
		}
		b.byKey[key] = i
	}
	return b
}

// ByCitationKey returns the entry whose citation key equals key.
func (b *Bibliography) ByCitationKey(key string) (Entry, bool) {
	i, ok := b.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i], true
}

// ByID returns the entry with the given BibTeX key.
func (b *Bibliography) ByID(id string) (Entry, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i], true
}

// Len is the number of entries.
func (b *Bibliography) Len() int { return len(b.entries) }

// Keys returns all citation keys, sorted.
func (b *Bibliography) Keys() []string {
	keys := make([]string, 0, len(b.byKey))
	for k := range b.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
