package raw

import (
	"fmt"
	"strings"
)

// Columns of the NegEx survey sheet.
const (
	ColLabel        = "NAM_LABEL"
	ColISO          = "ID_ISO_A3"
	ColSN           = "SN"
	ColSNSource     = "SN_Source"
	ColNegExForm    = "NegEx_Form"
	ColNegExFormSrc = "NegEx_Form_Source"
	ColNegExType    = "NegExType"
	ColComment      = "Comment"
)

// Row is one language of the survey.
type Row struct {
	// Line is the 1-based line in the source file, header included.
	Line            int
	Label           string
	ISO             string
	SN              string
	SNSource        string
	NegExForm       string
	NegExFormSource string
	NegExType       string
	Comment         string
}

// LoadRows reads the survey CSV. The label, ISO code and the three surveyed
// columns are required; source and comment columns may be absent.
func LoadRows(path string) ([]Row, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	rows, err := RowsFromTable(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// RowsFromTable converts a parsed table into typed rows.
func RowsFromTable(t *Table) ([]Row, error) {
	if err := t.Require(ColLabel, ColISO, ColSN, ColNegExForm, ColNegExType); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(t.Records))
	for i, rec := range t.Records {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, Row{
			Line:            t.Line(i),
			Label:           strings.TrimSpace(t.Value(rec, ColLabel)),
			ISO:             strings.TrimSpace(t.Value(rec, ColISO)),
			SN:              t.Value(rec, ColSN),
			SNSource:        t.Value(rec, ColSNSource),
			NegExForm:       t.Value(rec, ColNegExForm),
			NegExFormSource: t.Value(rec, ColNegExFormSrc),
			NegExType:       t.Value(rec, ColNegExType),
			Comment:         t.Value(rec, ColComment),
		})
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
