package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/veselinovanegex/pkg/bib"
	"github.com/japaniel/veselinovanegex/pkg/citation"
	"github.com/japaniel/veselinovanegex/pkg/cldf"
	"github.com/japaniel/veselinovanegex/pkg/config"
	"github.com/japaniel/veselinovanegex/pkg/db"
	"github.com/japaniel/veselinovanegex/pkg/glottolog"
	"github.com/japaniel/veselinovanegex/pkg/lookup"
	"github.com/japaniel/veselinovanegex/pkg/metrics"
	"github.com/japaniel/veselinovanegex/pkg/negex"
	"github.com/japaniel/veselinovanegex/pkg/raw"
)

func (a *app) makeCLDFCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "makecldf",
		Short: "Write the CLDF dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.makeCLDF(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) makeCLDF(ctx context.Context, out io.Writer) error {
	start := time.Now()
	paths := a.cfg.Resolve(a.dir)

	ds, err := a.build(paths)
	if err != nil {
		return err
	}

	meta := cldf.Metadata{
		ID:       a.cfg.Metadata.ID,
		Title:    a.cfg.Metadata.Title,
		URL:      a.cfg.Metadata.URL,
		License:  a.cfg.Metadata.License,
		Citation: a.cfg.Metadata.Citation,
	}
	if data, err := os.ReadFile(paths.Description()); err == nil {
		meta.Description = strings.TrimSpace(string(data))
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read description: %w", err)
	}
	if meta.Citation == "" {
		meta.Citation = selfCitationText(a.cfg.SelfCitation)
	}

	if err := cldf.NewWriter(paths.OutputDir(), meta, a.logger).Write(ds); err != nil {
		return err
	}

	if path := paths.SQLite(); path != "" {
		if err := a.exportSQLite(ctx, path, ds); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
	}

	if path := paths.Metrics(); path != "" {
		m := metrics.New()
		m.Record(ds, time.Since(start))
		if err := m.WriteFile(path); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	fmt.Fprintf(out, "Wrote %d languages, %d values and %d sources to %s (%d unresolved citations)\n",
		len(ds.Languages), len(ds.Values), len(ds.Sources), paths.OutputDir(), len(ds.Diagnostics))
	return nil
}

// build loads every input and runs the transformation.
func (a *app) build(paths config.Paths) (*negex.Dataset, error) {
	rows, err := raw.LoadRows(paths.Data())
	if err != nil {
		return nil, fmt.Errorf("load raw data: %w", err)
	}
	corrections, err := lookup.LoadLanguageCorrections(paths.Languages())
	if err != nil {
		return nil, fmt.Errorf("load language corrections: %w", err)
	}
	params, err := lookup.LoadParameters(paths.Parameters())
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}
	codes, err := lookup.LoadCodes(paths.Codes())
	if err != nil {
		return nil, fmt.Errorf("load codes: %w", err)
	}
	entries, err := bib.Load(paths.Bibliography())
	if err != nil {
		return nil, fmt.Errorf("load bibliography: %w", err)
	}

	var languoids negex.LanguoidProvider
	catalog, err := glottolog.Load(paths.Glottolog())
	switch {
	case err == nil:
		languoids = catalog
		a.logger.Debug("Loaded glottolog", "codes", catalog.Len())
	case errors.Is(err, os.ErrNotExist):
		a.logger.Warn("Glottolog export missing, languages will have no glottocodes", "path", paths.Glottolog())
	default:
		return nil, fmt.Errorf("load glottolog: %w", err)
	}

	corrs := make([]citation.Correction, 0, len(a.cfg.Citation.Corrections))
	for _, c := range a.cfg.Citation.Corrections {
		corrs = append(corrs, citation.Correction{From: c.From, To: c.To})
	}
	resolver := citation.NewResolver(bib.New(entries), citation.NewNormalizer(corrs), a.logger)

	self := bib.Entry{
		ID:     a.cfg.SelfCitation.ID,
		Type:   a.cfg.SelfCitation.Type,
		Fields: a.cfg.SelfCitation.Fields,
	}
	ds, err := negex.Build(negex.Inputs{
		Rows:         rows,
		Corrections:  corrections,
		Parameters:   params,
		Codes:        codes,
		Languoids:    languoids,
		Resolver:     resolver,
		SelfCitation: self,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Built dataset",
		"rows", ds.Stats.Rows,
		"unmatched_languoids", ds.Stats.UnmatchedLanguoids,
		"citations_resolved", ds.Stats.Citations.Resolved,
		"citations_unresolved", ds.Stats.Citations.Unresolved,
		"personal_communications", ds.Stats.Citations.Personal)
	return ds, nil
}

func (a *app) exportSQLite(ctx context.Context, path string, ds *negex.Dataset) error {
	conn, err := db.Create(ctx, path)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Export(ctx, conn, ds); err != nil {
		return err
	}

	counts, err := db.CountRows(ctx, conn)
	if err != nil {
		return err
	}
	a.logger.Info("Exported SQLite database",
		"path", path,
		"languages", counts["LanguageTable"],
		"parameters", counts["ParameterTable"],
		"codes", counts["CodeTable"],
		"sources", counts["SourceTable"],
		"values", counts["ValueTable"],
		"citations", counts["ValueTable_SourceTable"])
	return nil
}

// selfCitationText renders the dataset's own publication as a plain reference.
func selfCitationText(c config.SelfCitationConfig) string {
	f := c.Fields
	if f["author"] == "" || f["title"] == "" {
		return ""
	}
	s := fmt.Sprintf("%s. %s. %s.", f["author"], f["year"], f["title"])
	if j := f["journal"]; j != "" {
		s += " " + j
		if v := f["volume"]; v != "" {
			s += " " + v
			if n := f["number"]; n != "" {
				s += "(" + n + ")"
			}
		}
		if p := f["pages"]; p != "" {
			s += ". " + p
		}
		s += "."
	}
	return s
}
