package lookup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/japaniel/veselinovanegex/pkg/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T, content string) *raw.Table {
	t.Helper()
	tbl, err := raw.ParseCSV(strings.NewReader(content))
	require.NoError(t, err)
	return tbl
}

func TestLanguageCorrections(t *testing.T) {
	lc, err := LanguageCorrectionsFromTable(table(t, "NAM_LABEL,ID_ISO_A3\nOld Frisian,ofs\n Komi ,kpv\n,xxx\n"))
	require.NoError(t, err)

	code, ok := lc.Lookup("Old Frisian")
	assert.True(t, ok)
	assert.Equal(t, "ofs", code)

	code, ok = lc.Lookup("Komi")
	assert.True(t, ok)
	assert.Equal(t, "kpv", code)

	_, ok = lc.Lookup("Finnish")
	assert.False(t, ok, "absent labels are a miss, not an error")
	assert.Len(t, lc, 2)
}

func TestLanguageCorrectionsHeaderMismatch(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"renamed column", "Label,ID_ISO_A3\nX,xxx\n"},
		{"swapped columns", "ID_ISO_A3,NAM_LABEL\nxxx,X\n"},
		{"extra column", "NAM_LABEL,ID_ISO_A3,Glottocode\nX,xxx,abcd1234\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LanguageCorrectionsFromTable(table(t, tt.content))
			require.ErrorIs(t, err, ErrHeaderMismatch)
		})
	}
}

func TestLoadLanguageCorrectionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages.csv")
	require.NoError(t, os.WriteFile(path, []byte("NAM_LABEL,ID_ISO_A3\nA,aaa\n"), 0o644))

	lc, err := LoadLanguageCorrections(path)
	require.NoError(t, err)
	assert.Equal(t, LanguageCorrections{"A": "aaa"}, lc)

	_, err = LoadLanguageCorrections(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestParameters(t *testing.T) {
	p, err := ParametersFromTable(table(t,
		"ID,Name,Description,Original_Name,Grammacodes\n"+
			"SN,Standard negation,,SN,\"NEG, SN ,,\"\n"+
			"NegExForm,,Form of the negative existential,NegEx_Form,\n"))
	require.NoError(t, err)

	sn, ok := p.ByOriginalName("SN")
	require.True(t, ok)
	assert.Equal(t, []string{"NEG", "SN"}, sn.Grammacodes)

	form, ok := p.ByOriginalName("NegEx_Form")
	require.True(t, ok)
	assert.Equal(t, "NegExForm", form.ID)
	assert.Equal(t, "NegEx_Form", form.Name, "name falls back to original name")
	assert.Nil(t, form.Grammacodes)

	_, ok = p.ByOriginalName("NegExType")
	assert.False(t, ok)

	all := p.All()
	require.Len(t, all, 2)
	assert.Equal(t, "SN", all[0].ID)
}

func TestParametersMissingColumn(t *testing.T) {
	_, err := ParametersFromTable(table(t, "ID,Name\nSN,x\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , b,c ", []string{"a", "b", "c"}},
		{",,", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitList(tt.in), "SplitList(%q)", tt.in)
	}
}

func TestCodes(t *testing.T) {
	c, err := CodesFromTable(table(t,
		"ID,Parameter_ID,Original_Name,Name,Map_Icon\n"+
			"SN-1,SN,verb,Negative verb,c0000dd\n"+
			"SN-2,SN,particle,Particle,\n"+
			"T-A,NegExType,A,Type A,\n"))
	require.NoError(t, err)

	code, ok := c.Lookup("SN", "verb")
	require.True(t, ok)
	assert.Equal(t, "SN-1", code.ID)
	assert.Equal(t, "Negative verb", code.Name)
	assert.Equal(t, "c0000dd", code.MapIcon)

	_, ok = c.Lookup("NegExType", "verb")
	assert.False(t, ok, "codes are keyed per parameter")

	_, ok = c.Lookup("SN", "Verb")
	assert.False(t, ok, "original values match exactly")

	assert.Len(t, c.All(), 3)
}
