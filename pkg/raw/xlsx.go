package raw

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ConvertWorkbook writes every sheet of the workbook at path to
// outDir/<stem>.<sheet>.csv and returns the written paths in sheet order.
func ConvertWorkbook(path, outDir string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in Excel file %s", path)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var written []string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return written, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		dest := filepath.Join(outDir, fmt.Sprintf("%s.%s.csv", stem, sheet))
		if err := writeRows(dest, rows); err != nil {
			return written, err
		}
		slog.Debug("Converted sheet", "sheet", sheet, "rows", len(rows), "path", dest)
		written = append(written, dest)
	}
	return written, nil
}

// writeRows pads every row to the widest one so readers see a rectangular table.
func writeRows(dest string, rows [][]string) error {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w := csv.NewWriter(out)
	for _, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		if err := w.Write(r); err != nil {
			out.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
