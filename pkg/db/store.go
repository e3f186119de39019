package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/japaniel/veselinovanegex/pkg/bib"
	"github.com/japaniel/veselinovanegex/pkg/citation"
	"github.com/japaniel/veselinovanegex/pkg/lookup"
	"github.com/japaniel/veselinovanegex/pkg/negex"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Export writes the whole dataset in a single transaction.
func Export(ctx context.Context, conn *sql.DB, ds *negex.Dataset) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, l := range ds.Languages {
		if err := InsertLanguage(ctx, tx, l); err != nil {
			return err
		}
	}
	for _, p := range ds.Parameters {
		if err := InsertParameter(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, c := range ds.Codes {
		if err := InsertCode(ctx, tx, c); err != nil {
			return err
		}
	}
	for _, s := range ds.Sources {
		if err := InsertSource(ctx, tx, s); err != nil {
			return err
		}
	}
	for _, v := range ds.Values {
		if err := InsertValue(ctx, tx, v); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// InsertLanguage inserts one LanguageTable row.
func InsertLanguage(ctx context.Context, db DBExecutor, l negex.Language) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO LanguageTable (ID, Name, Glottocode, ISO639P3code, Latitude, Longitude) VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, nullableString(l.Glottocode), nullableString(l.ISO639P3code), nullableFloat(l.Latitude), nullableFloat(l.Longitude))
	if err != nil {
		return fmt.Errorf("insert language %s: %w", l.ID, err)
	}
	return nil
}

// InsertParameter inserts one ParameterTable row.
func InsertParameter(ctx context.Context, db DBExecutor, p lookup.Parameter) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO ParameterTable (ID, Name, Description, Original_Name, Grammacodes) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.OriginalName, strings.Join(p.Grammacodes, ";"))
	if err != nil {
		return fmt.Errorf("insert parameter %s: %w", p.ID, err)
	}
	return nil
}

// InsertCode inserts one CodeTable row.
func InsertCode(ctx context.Context, db DBExecutor, c lookup.Code) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO CodeTable (ID, Parameter_ID, Name, Description, Original_Name, Map_Icon) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.ParameterID, c.Name, c.Description, c.OriginalName, nullableString(c.MapIcon))
	if err != nil {
		return fmt.Errorf("insert code %s: %w", c.ID, err)
	}
	return nil
}

// InsertSource inserts one SourceTable row with the entry's BibTeX rendering.
func InsertSource(ctx context.Context, db DBExecutor, e bib.Entry) error {
	author := e.Field("author")
	if author == "" {
		author = e.Field("editor")
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO SourceTable (ID, Type, Author, Year, Title, BibTeX) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Type, nullableString(author), nullableString(e.Field("year")), nullableString(e.Field("title")),
		bib.Format([]bib.Entry{e}))
	if err != nil {
		return fmt.Errorf("insert source %s: %w", e.ID, err)
	}
	return nil
}

// InsertValue inserts one ValueTable row and links its source references.
func InsertValue(ctx context.Context, db DBExecutor, v negex.Value) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO ValueTable (ID, Language_ID, Parameter_ID, Value, Code_ID, Comment, Source_comment) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.LanguageID, v.ParameterID, v.Value, nullableString(v.CodeID), nullableString(v.Comment), nullableString(v.SourceComment))
	if err != nil {
		return fmt.Errorf("insert value %s: %w", v.ID, err)
	}
	for _, ref := range v.Source {
		id, pages := citation.ParseSourceRef(ref)
		if err := LinkValueToSource(ctx, db, v.ID, id, pages); err != nil {
			return err
		}
	}
	return nil
}

// LinkValueToSource records that a value cites a source, with an optional page range.
func LinkValueToSource(ctx context.Context, db DBExecutor, valueID, sourceID, pages string) error {
	if valueID == "" || sourceID == "" {
		return fmt.Errorf("value and source IDs must be non-empty")
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO ValueTable_SourceTable (ValueTable_ID, SourceTable_ID, Context) VALUES (?, ?, ?)`,
		valueID, sourceID, nullableString(pages))
	if err != nil {
		return fmt.Errorf("link value %s to source %s: %w", valueID, sourceID, err)
	}
	return nil
}

// CountRows returns the number of rows in each exported table.
func CountRows(ctx context.Context, db DBExecutor) (map[string]int, error) {
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		// Table names come from a fixed list.
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// nullableString returns nil for "" else the value.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
