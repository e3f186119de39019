// Package lookup loads the curator-maintained correction and dictionary tables.
//
// A miss in any lookup is not an error: callers fall back to the raw data.
package lookup

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/japaniel/veselinovanegex/pkg/raw"
)

// ErrHeaderMismatch is returned when the language correction table does not
// have the expected header, which means its schema changed.
var ErrHeaderMismatch = errors.New("unexpected header")

// ErrMissingColumn is re-exported so callers need not import raw.
var ErrMissingColumn = raw.ErrMissingColumn

// LanguageHeader is the required header of the language correction table.
var LanguageHeader = []string{raw.ColLabel, raw.ColISO}

// LanguageCorrections maps an original language label to a corrected ISO code.
type LanguageCorrections map[string]string

// Lookup returns the corrected code for label.
func (lc LanguageCorrections) Lookup(label string) (string, bool) {
	code, ok := lc[label]
	return code, ok
}

// LoadLanguageCorrections reads the two-column label/code table.
func LoadLanguageCorrections(path string) (LanguageCorrections, error) {
	t, err := raw.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return LanguageCorrectionsFromTable(t)
}

// LanguageCorrectionsFromTable validates the header and builds the mapping.
func LanguageCorrectionsFromTable(t *raw.Table) (LanguageCorrections, error) {
	if !slices.Equal(t.Header, LanguageHeader) {
		return nil, fmt.Errorf("%w: language corrections have %v, want %v", ErrHeaderMismatch, t.Header, LanguageHeader)
	}

	lc := make(LanguageCorrections, len(t.Records))
	for _, rec := range t.Records {
		label := strings.TrimSpace(t.Value(rec, raw.ColLabel))
		code := strings.TrimSpace(t.Value(rec, raw.ColISO))
		if label == "" || code == "" {
			continue
		}
		lc[label] = code
	}
	return lc, nil
}

// Parameter is one surveyed feature.
type Parameter struct {
	ID           string
	Name         string
	Description  string
	OriginalName string
	Grammacodes  []string
}

// Parameters is the parameter dictionary keyed by original feature name.
type Parameters struct {
	ordered []Parameter
	index   map[string]int
}

// LoadParameters reads the parameter dictionary.
func LoadParameters(path string) (*Parameters, error) {
	t, err := raw.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	p, err := ParametersFromTable(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParametersFromTable builds the dictionary from a parsed table.
func ParametersFromTable(t *raw.Table) (*Parameters, error) {
	if err := t.Require("ID", "Original_Name"); err != nil {
		return nil, err
	}

	p := &Parameters{index: make(map[string]int, len(t.Records))}
	for _, rec := range t.Records {
		param := Parameter{
			ID:           strings.TrimSpace(t.Value(rec, "ID")),
			Name:         strings.TrimSpace(t.Value(rec, "Name")),
			Description:  strings.TrimSpace(t.Value(rec, "Description")),
			OriginalName: strings.TrimSpace(t.Value(rec, "Original_Name")),
			Grammacodes:  SplitList(t.Value(rec, "Grammacodes")),
		}
		if param.ID == "" {
			continue
		}
		if param.Name == "" {
			param.Name = param.OriginalName
		}
		if _, dup := p.index[param.OriginalName]; !dup {
			p.index[param.OriginalName] = len(p.ordered)
		}
		p.ordered = append(p.ordered, param)
	}
	return p, nil
}

// ByOriginalName returns the parameter surveyed under name.
func (p *Parameters) ByOriginalName(name string) (Parameter, bool) {
	i, ok := p.index[name]
	if !ok {
		return Parameter{}, false
	}
	return p.ordered[i], true
}

// All returns the parameters in file order.
func (p *Parameters) All() []Parameter {
	return slices.Clone(p.ordered)
}

// SplitList splits a comma-separated field into trimmed, non-empty tokens.
func SplitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Code is one admissible value of a parameter.
type Code struct {
	ID           string
	ParameterID  string
	OriginalName string
	Name         string
	Description  string
	MapIcon      string
}

type codeKey struct {
	parameterID string
	original    string
}

// Codes is the code dictionary keyed by (parameter ID, original value).
type Codes struct {
	ordered []Code
	index   map[codeKey]int
}

// LoadCodes reads the code dictionary.
func LoadCodes(path string) (*Codes, error) {
	t, err := raw.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	c, err := CodesFromTable(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// CodesFromTable builds the dictionary from a parsed table.
func CodesFromTable(t *raw.Table) (*Codes, error) {
	if err := t.Require("ID", "Parameter_ID", "Original_Name", "Name"); err != nil {
		return nil, err
	}

	c := &Codes{index: make(map[codeKey]int, len(t.Records))}
	for _, rec := range t.Records {
		code := Code{
			ID:           strings.TrimSpace(t.Value(rec, "ID")),
			ParameterID:  strings.TrimSpace(t.Value(rec, "Parameter_ID")),
			OriginalName: strings.TrimSpace(t.Value(rec, "Original_Name")),
			Name:         strings.TrimSpace(t.Value(rec, "Name")),
			Description:  strings.TrimSpace(t.Value(rec, "Description")),
			MapIcon:      strings.TrimSpace(t.Value(rec, "Map_Icon")),
		}
		if code.ID == "" {
			continue
		}
		key := codeKey{code.ParameterID, code.OriginalName}
		if _, dup := c.index[key]; !dup {
			c.index[key] = len(c.ordered)
		}
		c.ordered = append(c.ordered, code)
	}
	return c, nil
}

// Lookup returns the code of parameterID whose original value is original.
func (c *Codes) Lookup(parameterID, original string) (Code, bool) {
	i, ok := c.index[codeKey{parameterID, original}]
	if !ok {
		return Code{}, false
	}
	return c.ordered[i], true
}

// All returns the codes in file order.
func (c *Codes) All() []Code {
	return slices.Clone(c.ordered)
}
