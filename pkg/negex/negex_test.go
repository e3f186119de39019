package negex

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/japaniel/veselinovanegex/pkg/bib"
	"github.com/japaniel/veselinovanegex/pkg/citation"
	"github.com/japaniel/veselinovanegex/pkg/glottolog"
	"github.com/japaniel/veselinovanegex/pkg/lookup"
	"github.com/japaniel/veselinovanegex/pkg/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parametersCSV = `ID,Name,Description,Original_Name,Grammacodes
sn,Standard negation,,SN,"verbal, particle"
negex,Negative existential form,,NegEx_Form,
type,Negative existential type,,NegExType,"A,B"
`

const codesCSV = `ID,Parameter_ID,Original_Name,Name,Description,Map_Icon
type-A,type,A,Type A,Special negator,c0000dd
type-B,type,B,Type B,Partly special,cdd0000
`

func mustTable(t *testing.T, content string) *raw.Table {
	t.Helper()
	tbl, err := raw.ParseCSV(strings.NewReader(content))
	require.NoError(t, err)
	return tbl
}

type fixture struct {
	params *lookup.Parameters
	codes  *lookup.Codes
	bib    *bib.Bibliography
	self   bib.Entry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	params, err := lookup.ParametersFromTable(mustTable(t, parametersCSV))
	require.NoError(t, err)
	codes, err := lookup.CodesFromTable(mustTable(t, codesCSV))
	require.NoError(t, err)

	entries := []bib.Entry{
		{ID: "veselinova2013", Type: "article", Fields: map[string]string{"author": "Veselinova, L.", "year": "2013"}},
		{ID: "smithdoe1990", Type: "book", Fields: map[string]string{"author": "Smith, J. and Doe, A.", "year": "1990"}},
	}
	return fixture{
		params: params,
		codes:  codes,
		bib:    bib.New(entries),
		self:   bib.Entry{ID: "Veselinova2013negex", Type: "article", Fields: map[string]string{"author": "Veselinova, Ljuba", "year": "2013"}},
	}
}

func (f fixture) resolver() *citation.Resolver {
	return citation.NewResolver(f.bib, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (f fixture) inputs(rows []raw.Row) Inputs {
	return Inputs{
		Rows:         rows,
		Corrections:  lookup.LanguageCorrections{"Saami, North": "sme"},
		Parameters:   f.params,
		Codes:        f.codes,
		Languoids:    glottolog.NewCatalog([]glottolog.Languoid{{Glottocode: "finn1318", ISO: "fin", Latitude: ptr(64.76), Longitude: ptr(25.56)}}),
		Resolver:     f.resolver(),
		SelfCitation: f.self,
	}
}

func ptr(f float64) *float64 { return &f }

func sampleRows() []raw.Row {
	return []raw.Row{
		{Line: 2, Label: "Finnish", ISO: "fin", SN: "verbal", SNSource: "Veselinova 2013: 10", NegExForm: "ei ole", NegExFormSource: "(Smith, Doe 1990): 12-15", NegExType: "A", Comment: " checked "},
		{Line: 3, Label: "Saami, North", ISO: "sme-x", SN: "particle", SNSource: "Unknown Author 1999", NegExForm: "ii", NegExFormSource: "Aikio (p.c.)", NegExType: " C "},
	}
}

func TestBuildProducesOneLanguageAndThreeValuesPerRow(t *testing.T) {
	f := newFixture(t)
	rows := sampleRows()

	ds, err := Build(f.inputs(rows))
	require.NoError(t, err)

	require.Len(t, ds.Languages, len(rows))
	require.Len(t, ds.Values, 3*len(rows))

	ids := make(map[string]bool)
	for _, v := range ds.Values {
		assert.False(t, ids[v.ID], "duplicate value ID %s", v.ID)
		ids[v.ID] = true
	}
	for _, id := range []string{"fin-SN", "fin-NegEx_Form", "fin-NegExType", "sme-SN", "sme-NegEx_Form", "sme-NegExType"} {
		assert.True(t, ids[id], "missing value %s", id)
	}
	assert.Equal(t, 2, ds.Stats.Rows)
}

func TestLanguageCorrectionOverridesISO(t *testing.T) {
	f := newFixture(t)
	ds, err := Build(f.inputs(sampleRows()))
	require.NoError(t, err)

	fin := ds.Languages[0]
	assert.Equal(t, "fin", fin.ID)
	assert.Equal(t, "fin", fin.ISO639P3code)
	assert.Equal(t, "finn1318", fin.Glottocode)
	require.NotNil(t, fin.Latitude)
	assert.InDelta(t, 64.76, *fin.Latitude, 1e-9)

	sme := ds.Languages[1]
	assert.Equal(t, "sme", sme.ID, "correction table wins over the raw ISO code")
	assert.Equal(t, "Saami, North", sme.Name)
	assert.Empty(t, sme.Glottocode)
	assert.Nil(t, sme.Latitude)
	assert.Equal(t, 1, ds.Stats.UnmatchedLanguoids)
}

func TestLanguageID(t *testing.T) {
	corrections := lookup.LanguageCorrections{"Saami, North": "sme"}

	assert.Equal(t, "sme", LanguageID(raw.Row{Label: "Saami, North", ISO: "sme-x"}, corrections))
	assert.Equal(t, "fin", LanguageID(raw.Row{Label: "Finnish", ISO: " fin "}, corrections))
	assert.Equal(t, "fin", LanguageID(raw.Row{Label: "Finnish", ISO: "fin"}, nil))
}

func TestBuildLanguagesDuplicate(t *testing.T) {
	rows := []raw.Row{
		{Line: 2, Label: "Finnish", ISO: "fin"},
		{Line: 3, Label: "Suomi", ISO: "fin"},
	}
	_, err := BuildLanguages(rows, nil, nil)
	require.ErrorIs(t, err, ErrDuplicateLanguage)
	assert.Contains(t, err.Error(), "lines 2 and 3")
}

func TestBuildLanguagesMissingID(t *testing.T) {
	_, err := BuildLanguages([]raw.Row{{Line: 5, Label: "Mystery"}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 5")
}

func TestValueCodes(t *testing.T) {
	f := newFixture(t)
	ds, err := Build(f.inputs(sampleRows()))
	require.NoError(t, err)

	byID := valuesByID(ds.Values)

	typeA := byID["fin-NegExType"]
	assert.Equal(t, "type", typeA.ParameterID)
	assert.Equal(t, "type-A", typeA.CodeID)
	assert.Equal(t, "Type A", typeA.Value)

	unknown := byID["sme-NegExType"]
	assert.Empty(t, unknown.CodeID, "values outside the code dictionary have no code")
	assert.Equal(t, "C", unknown.Value, "raw text is kept, trimmed")

	sn := byID["fin-SN"]
	assert.Equal(t, "sn", sn.ParameterID)
	assert.Equal(t, "verbal", sn.Value)
	assert.Equal(t, "checked", sn.Comment)

	assert.Equal(t, 2, ds.Stats.UnmatchedCodes["sn"])
	assert.Equal(t, 2, ds.Stats.UnmatchedCodes["negex"])
	assert.Equal(t, 1, ds.Stats.UnmatchedCodes["type"])
}

func TestValueSources(t *testing.T) {
	f := newFixture(t)
	ds, err := Build(f.inputs(sampleRows()))
	require.NoError(t, err)

	byID := valuesByID(ds.Values)

	assert.Equal(t, []string{"veselinova2013[10]"}, byID["fin-SN"].Source)
	assert.Equal(t, []string{"smithdoe1990[12-15]"}, byID["fin-NegEx_Form"].Source)
	assert.Equal(t, []string{"Veselinova2013negex"}, byID["fin-NegExType"].Source)

	unresolved := byID["sme-SN"]
	assert.Empty(t, unresolved.Source)
	assert.Equal(t, "Unknown Author 1999", unresolved.SourceComment)

	personal := byID["sme-NegEx_Form"]
	assert.Empty(t, personal.Source)
	assert.Equal(t, "Aikio (p.c.)", personal.SourceComment)

	require.Len(t, ds.Diagnostics, 1)
	assert.Equal(t, citation.Diagnostic{LanguageID: "sme", Field: raw.ColSNSource, Raw: "Unknown Author 1999"}, ds.Diagnostics[0])
	assert.Equal(t, citation.Stats{Resolved: 2, Unresolved: 1, Personal: 1}, ds.Stats.Citations)
}

func TestSourcesAreCitedEntriesOnly(t *testing.T) {
	f := newFixture(t)
	rows := sampleRows()[:1]
	rows[0].NegExFormSource = ""

	ds, err := Build(f.inputs(rows))
	require.NoError(t, err)

	var ids []string
	for _, e := range ds.Sources {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"Veselinova2013negex", "veselinova2013"}, ids)
}

func TestParametersIncludeUnknownColumns(t *testing.T) {
	f := newFixture(t)
	params, err := lookup.ParametersFromTable(mustTable(t, "ID,Name,Description,Original_Name,Grammacodes\nsn,Standard negation,,SN,\n"))
	require.NoError(t, err)

	in := f.inputs(sampleRows())
	in.Parameters = params
	ds, err := Build(in)
	require.NoError(t, err)

	var ids []string
	for _, p := range ds.Parameters {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"sn", "NegEx_Form", "NegExType"}, ids)
	assert.Equal(t, "NegExType", valuesByID(ds.Values)["fin-NegExType"].ParameterID)
}

func TestBuildRequiresLookups(t *testing.T) {
	_, err := Build(Inputs{})
	require.Error(t, err)
}

func TestBuildValues(t *testing.T) {
	f := newFixture(t)
	values := BuildValues(sampleRows()[0], "fin", f.params, f.codes, f.resolver(), "self")
	require.Len(t, values, 3)
	assert.Equal(t, []string{"self"}, values[2].Source)
}

func valuesByID(values []Value) map[string]Value {
	out := make(map[string]Value, len(values))
	for _, v := range values {
		out[v.ID] = v
	}
	return out
}
