package db

import (
	"context"
	"database/sql"

	"github.com/japaniel/veselinovanegex/pkg/negex"
)

// valueSource links a value with a source and holds the cited page range.
type valueSource struct {
	ValueID  string
	SourceID string
	Pages    string
}

// sourcesByValue returns the source references of a value in insertion order.
func sourcesByValue(ctx context.Context, db DBExecutor, valueID string) ([]valueSource, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT ValueTable_ID, SourceTable_ID, Context FROM ValueTable_SourceTable WHERE ValueTable_ID = ? ORDER BY rowid`, valueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []valueSource
	for rows.Next() {
		var vs valueSource
		var pages sql.NullString
		if err := rows.Scan(&vs.ValueID, &vs.SourceID, &pages); err != nil {
			return nil, err
		}
		if pages.Valid {
			vs.Pages = pages.String
		}
		out = append(out, vs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// valuesByLanguage returns the values recorded for a language.
func valuesByLanguage(ctx context.Context, db DBExecutor, languageID string) ([]negex.Value, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT ID, Language_ID, Parameter_ID, Value, Code_ID, Comment, Source_comment FROM ValueTable WHERE Language_ID = ? ORDER BY rowid`, languageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []negex.Value
	for rows.Next() {
		var v negex.Value
		var value, code, comment, sourceComment sql.NullString
		if err := rows.Scan(&v.ID, &v.LanguageID, &v.ParameterID, &value, &code, &comment, &sourceComment); err != nil {
			return nil, err
		}
		v.Value = value.String
		v.CodeID = code.String
		v.Comment = comment.String
		v.SourceComment = sourceComment.String
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
