// Package main provides the negex binary, which builds the NegEx CLDF
// dataset from the curator's raw files.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/japaniel/veselinovanegex/pkg/config"
	"github.com/japaniel/veselinovanegex/pkg/negex"
)

const appName = "negex"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands once the root command has
// parsed the global flags.
type app struct {
	configPath string
	dir        string
	logLevel   string

	logger *slog.Logger
	cfg    *config.Config
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Build the NegEx CLDF dataset",
		Long: `negex converts the survey of negative existentials (a spreadsheet of
languages plus a BibTeX bibliography) into a CLDF StructureDataset.

Typical use:
  negex download   fetch and convert the raw workbook
  negex makecldf   write the CLDF dataset into cldf/`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&a.dir, "dir", ".", "Dataset root directory")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		a.downloadCmd(),
		a.makeCLDFCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, negex.Version())
			},
		},
	)

	return cmd
}

// setup configures logging and loads the configuration for the dataset root.
func (a *app) setup(cmd *cobra.Command) error {
	a.logger = newLogger(a.logLevel, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)

	dir, err := filepath.Abs(a.dir)
	if err != nil {
		return fmt.Errorf("resolve dataset dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat dataset dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}
	a.dir = dir

	cfg, err := config.NewLoader(a.logger).Load(dir, a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	return nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
