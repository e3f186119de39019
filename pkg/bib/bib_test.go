package bib

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitationKey(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"two authors", map[string]string{"author": "Smith, J. and Doe, A.", "year": "1990"}, "Smith & Doe 1990"},
		{"single author", map[string]string{"author": "Veselinova, L.", "year": "2013"}, "Veselinova 2013"},
		{"first last order", map[string]string{"author": "Matti Miestamo", "year": "2005"}, "Miestamo 2005"},
		{"braced surname", map[string]string{"author": "{van der Auwera}, Johan", "year": "{2010}"}, "van der Auwera 2010"},
		{"editor fallback", map[string]string{"editor": "Dryer, Matthew S.  and\n Haspelmath, Martin", "year": "2013"}, "Dryer & Haspelmath 2013"},
		{"no year", map[string]string{"author": "Smith, J."}, ""},
		{"no author", map[string]string{"year": "1999"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{ID: "x", Fields: tt.fields}
			assert.Equal(t, tt.want, e.CitationKey())
		})
	}
}

func TestSurname(t *testing.T) {
	assert.Equal(t, "Smith", Surname("Smith, John"))
	assert.Equal(t, "Smith", Surname("John Smith"))
	assert.Equal(t, "", Surname("  "))
}

func TestBibliographyIndex(t *testing.T) {
	b := New([]Entry{
		{ID: "veselinova2013", Fields: map[string]string{"author": "Veselinova, L.", "year": "2013"}},
		{ID: "veselinova2013b", Fields: map[string]string{"author": "Veselinova, Ljuba", "year": "2013"}},
		{ID: "anon", Fields: map[string]string{"title": "No author"}},
	})

	e, ok := b.ByCitationKey("Veselinova 2013")
	require.True(t, ok)
	assert.Equal(t, "veselinova2013", e.ID, "first entry wins on a shared key")

	_, ok = b.ByCitationKey("Unknown Author 1999")
	assert.False(t, ok)

	_, ok = b.ByID("anon")
	assert.True(t, ok)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []string{"Veselinova 2013"}, b.Keys())
}

const sampleBib = `
@string{ijl = "Italian Journal of Linguistics"}

@article{veselinova2013,
  author = {Veselinova, Ljuba},
  title = {Negative existentials: A cross-linguistic study},
  journal = ijl,
  year = {2013}
}

@book{miestamo2005,
  Author = {Miestamo, Matti},
  Title = {Standard negation},
  Year = {2005}
}
`

func TestParseWellFormed(t *testing.T) {
	entries, err := Parse(strings.NewReader(sampleBib))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	b := New(entries)
	e, ok := b.ByCitationKey("Veselinova 2013")
	require.True(t, ok)
	assert.Equal(t, "article", e.Type)
	assert.Equal(t, "veselinova2013", e.ID)

	m, ok := b.ByID("miestamo2005")
	require.True(t, ok)
	assert.Equal(t, "Miestamo 2005", m.CitationKey(), "field names are case-insensitive")
}

func TestParseSkipsMalformedEntries(t *testing.T) {
	broken := sampleBib + `
@article{broken,
  author = {Unclosed, A.,
  year = 1999

@misc{doe1990,
  author = {Doe, Jane},
  year = {1990}
}
`
	entries, err := Parse(strings.NewReader(broken))
	require.NoError(t, err)

	b := New(entries)
	_, ok := b.ByID("veselinova2013")
	assert.True(t, ok)
	_, ok = b.ByID("doe1990")
	assert.True(t, ok)
	_, ok = b.ByID("broken")
	assert.False(t, ok)
}

func TestParseAfterMalformedInput(t *testing.T) {
	bad := `@article{broken,
  author = {Unclosed, A.,
  year = 1999
`
	_, err := Parse(strings.NewReader(bad))
	require.NoError(t, err)

	// A rejected file must not affect the next one.
	entries, err := Parse(strings.NewReader(sampleBib))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = Parse(strings.NewReader(bad + sampleBib))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestParseRejectsEntriesTheParserCannotRead(t *testing.T) {
	input := `@comment{exported by a reference manager}
@preamble{"\newcommand{\noop}[1]{}"}

@misc{undefined,
  author = {Roe, R.},
  journal = jling,
  year = 2001
}

@misc{email,
  author = {Poe, P. <poe@example.org>},
  year = {2002}
}

@misc(parens,
  author = {Moe, M.},
  year = {2003}
)

@misc{nokey
  author = {Zoe, Z.},
  year = {2004}
}

@string{jling = "Journal of Linguistics"}

@misc{good,
  author = "Doe, {J}ane",
  journal = jling # " (online)",
  month = mar,
  year = 2005,
}
trailing notes that are not BibTeX
`
	entries, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "good", e.ID)
	assert.Equal(t, "Doe 2005", e.CitationKey())
	assert.Equal(t, "Journal of Linguistics (online)", e.Fields["journal"])
}

func TestParseEmpty(t *testing.T) {
	entries, err := Parse(strings.NewReader("% nothing here\n"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.bib")
	in := []Entry{
		{ID: "veselinova2013", Type: "article", Fields: map[string]string{"author": "Veselinova, Ljuba", "year": "2013", "title": "Negative existentials"}},
		{ID: "doe1990", Type: "misc", Fields: map[string]string{"author": "Doe, Jane", "year": "1990"}},
	}
	require.NoError(t, WriteFile(path, in))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "veselinova2013")

	out, err := Load(path)
	require.NoError(t, err)
	require.Len(t, out, 2)

	b := New(out)
	e, ok := b.ByID("doe1990")
	require.True(t, ok)
	assert.Equal(t, "Doe 1990", e.CitationKey())
}
