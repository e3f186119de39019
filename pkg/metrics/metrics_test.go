package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/veselinovanegex/pkg/bib"
	"github.com/japaniel/veselinovanegex/pkg/citation"
	"github.com/japaniel/veselinovanegex/pkg/negex"
)

func TestRecordAndWriteFile(t *testing.T) {
	ds := &negex.Dataset{
		Values: []negex.Value{
			{ID: "fin-SN", ParameterID: "sn"},
			{ID: "fin-NegExType", ParameterID: "type"},
			{ID: "sme-SN", ParameterID: "sn"},
		},
		Sources: []bib.Entry{{ID: "self"}},
		Stats: negex.Stats{
			Rows:               2,
			UnmatchedLanguoids: 1,
			UnmatchedCodes:     map[string]int{"sn": 2},
			Citations:          citation.Stats{Resolved: 3, Unresolved: 1},
		},
	}

	m := New()
	m.Record(ds, 1500*time.Millisecond)

	families, err := m.registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	path := filepath.Join(t.TempDir(), "negex.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "negex_rows_total 2")
	assert.Contains(t, text, `negex_values_total{parameter="sn"} 2`)
	assert.Contains(t, text, `negex_values_total{parameter="type"} 1`)
	assert.Contains(t, text, `negex_unmatched_codes_total{parameter="sn"} 2`)
	assert.Contains(t, text, `negex_citations_total{outcome="resolved"} 3`)
	assert.Contains(t, text, `negex_citations_total{outcome="unresolved"} 1`)
	assert.Contains(t, text, `negex_citations_total{outcome="personal"} 0`)
	assert.Contains(t, text, "negex_unmatched_languoids_total 1")
	assert.Contains(t, text, "negex_sources 1")
	assert.Contains(t, text, "negex_build_duration_seconds 1.5")
}
