package cldf

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/japaniel/veselinovanegex/pkg/bib"
	"github.com/japaniel/veselinovanegex/pkg/negex"
)

// Writer writes a dataset into a CLDF directory.
type Writer struct {
	dir      string
	metadata Metadata
	logger   *slog.Logger
}

// NewWriter creates a writer for dir. A nil logger uses slog.Default().
func NewWriter(dir string, m Metadata, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, metadata: m, logger: logger}
}

// Write validates ds and, only if it is consistent, writes the metadata, the
// four component tables and sources.bib.
func (w *Writer) Write(ds *negex.Dataset) error {
	if err := Validate(ds); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeMetadata(filepath.Join(w.dir, MetadataFile), w.metadata); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	tables := []struct {
		component Component
		rows      [][]string
	}{
		{LanguageTable, languageRows(ds.Languages)},
		{ParameterTable, parameterRows(ds)},
		{CodeTable, codeRows(ds)},
		{ValueTable, valueRows(ds.Values)},
	}
	for _, t := range tables {
		path := filepath.Join(w.dir, t.component.URL)
		if err := writeCSV(path, t.component.Header(), t.rows); err != nil {
			return fmt.Errorf("write %s: %w", t.component.URL, err)
		}
		w.logger.Debug("Wrote table", "table", t.component.Type, "rows", len(t.rows))
	}

	if err := bib.WriteFile(filepath.Join(w.dir, SourcesFile), ds.Sources); err != nil {
		return fmt.Errorf("write %s: %w", SourcesFile, err)
	}

	w.logger.Info("Wrote CLDF dataset",
		"dir", w.dir,
		"languages", len(ds.Languages),
		"values", len(ds.Values),
		"sources", len(ds.Sources))
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func languageRows(languages []negex.Language) [][]string {
	rows := make([][]string, 0, len(languages))
	for _, l := range languages {
		rows = append(rows, []string{
			l.ID, l.Name, l.Glottocode, l.ISO639P3code,
			formatCoordinate(l.Latitude), formatCoordinate(l.Longitude),
		})
	}
	return rows
}

func parameterRows(ds *negex.Dataset) [][]string {
	rows := make([][]string, 0, len(ds.Parameters))
	for _, p := range ds.Parameters {
		rows = append(rows, []string{
			p.ID, p.Name, p.Description, p.OriginalName,
			strings.Join(p.Grammacodes, ListSeparator),
		})
	}
	return rows
}

func codeRows(ds *negex.Dataset) [][]string {
	rows := make([][]string, 0, len(ds.Codes))
	for _, c := range ds.Codes {
		rows = append(rows, []string{c.ID, c.ParameterID, c.Name, c.Description, c.OriginalName, c.MapIcon})
	}
	return rows
}

func valueRows(values []negex.Value) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{
			v.ID, v.LanguageID, v.ParameterID, v.Value, v.CodeID, v.Comment,
			strings.Join(v.Source, ListSeparator), v.SourceComment,
		})
	}
	return rows
}

func formatCoordinate(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
