package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/japaniel/veselinovanegex/pkg/glottolog"
	"github.com/japaniel/veselinovanegex/pkg/raw"
)

func (a *app) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Fetch the raw workbook and convert its sheets to CSV",
		Long: `download prepares raw/ for makecldf:
- fetches the workbook from raw.workbook_url when it is missing,
- converts every sheet of the workbook to raw/<stem>.<sheet>.csv,
- makes sure the Glottolog languoid export exists,
- stores the readable text of metadata.url in raw/description.txt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.download(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) download(ctx context.Context, out io.Writer) error {
	paths := a.cfg.Resolve(a.dir)

	if a.cfg.Raw.WorkbookURL != "" {
		if err := raw.EnsureFile(ctx, paths.Workbook(), a.cfg.Raw.WorkbookURL); err != nil {
			return fmt.Errorf("fetch workbook: %w", err)
		}
	}

	switch _, err := os.Stat(paths.Workbook()); {
	case err == nil:
		written, err := raw.ConvertWorkbook(paths.Workbook(), paths.RawDir())
		if err != nil {
			return err
		}
		for _, path := range written {
			a.logger.Info("Converted sheet", "path", path)
		}
		fmt.Fprintf(out, "Converted %d sheets from %s\n", len(written), paths.Workbook())
	case errors.Is(err, os.ErrNotExist):
		if _, err := os.Stat(paths.Data()); err != nil {
			return fmt.Errorf("neither workbook %s nor data %s found", paths.Workbook(), paths.Data())
		}
		a.logger.Info("No workbook, keeping existing CSV", "path", paths.Data())
	default:
		return err
	}

	if a.cfg.Glottolog.URL != "" {
		if err := glottolog.Ensure(ctx, paths.Glottolog(), a.cfg.Glottolog.URL); err != nil {
			return fmt.Errorf("fetch glottolog: %w", err)
		}
	} else if _, err := os.Stat(paths.Glottolog()); err != nil {
		a.logger.Warn("Glottolog export missing, languages will have no glottocodes", "path", paths.Glottolog())
	}

	if a.cfg.Metadata.URL != "" {
		desc, err := raw.FetchDescription(ctx, a.cfg.Metadata.URL)
		if err != nil {
			a.logger.Warn("Failed to fetch dataset description", "url", a.cfg.Metadata.URL, "error", err)
			return nil
		}
		if err := os.WriteFile(paths.Description(), []byte(desc.Text+"\n"), 0o644); err != nil {
			return fmt.Errorf("write description: %w", err)
		}
		a.logger.Info("Saved dataset description", "title", desc.Title, "path", paths.Description())
	}
	return nil
}
