// Package cli implements the importer command line.
//
//	importer partners clients.xlsx --job clients.yaml --html report.html
//	importer products catalog.csv --dry-run
//	importer version
package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/erpimport/internal/application"
	"github.com/JonMunkholm/erpimport/internal/config"
	"github.com/JonMunkholm/erpimport/internal/core"
	"github.com/JonMunkholm/erpimport/internal/logging"
)

// Runner runs one import batch. *core.Service implements it.
type Runner interface {
	Run(ctx context.Context, kind string, rows []core.Row, opts core.Options) (*core.BatchResult, error)
}

// Deps are the side-effecting dependencies of the commands.
type Deps struct {
	LoadConfig func() (*config.Config, error)
	Open       func(ctx context.Context, cfg *config.Config, dryRun bool) (Runner, func(), error)
	Stdout     io.Writer
	Stderr     io.Writer
}

// DefaultDeps reads the environment and connects to the configured database.
func DefaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		Open: func(ctx context.Context, cfg *config.Config, dryRun bool) (Runner, func(), error) {
			app, err := application.Open(ctx, cfg, application.Options{DryRun: dryRun})
			if err != nil {
				return nil, nil, err
			}
			return app.Service, app.Close, nil
		},
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(deps Deps) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "importer",
		Short: "Normalize, validate and import partners and products into the ERP",
		Long: `importer reads a CSV or XLSX spreadsheet, repairs and validates every row
(countries, VAT numbers, IBAN/BIC, SIREN/SIRET, barcodes, taxes, accounts)
and creates the records. Every value that was changed or discarded is
reported per line and per field.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the configuration")

	for _, kind := range core.All() {
		root.AddCommand(newImportCmd(deps, kind.Info))
	}
	root.AddCommand(newVersionCmd(deps))
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, deps Deps) int {
	if err := NewRootCmd(deps).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func setupLogging(deps Deps, cfg *config.Config, verbose bool) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logging.Setup(deps.Stderr, level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
}
