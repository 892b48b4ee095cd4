package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/a-h/templ"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/erpimport/internal/application"
	"github.com/JonMunkholm/erpimport/internal/core"
	"github.com/JonMunkholm/erpimport/internal/report"
	"github.com/JonMunkholm/erpimport/internal/sheet"
)

type importFlags struct {
	job              string
	noDeliverability bool
	noCreateBank     bool
	noInventory      bool
	location         int64
	dryRun           bool
	html             string
	json             bool
	verbose          bool
}

func newImportCmd(deps Deps, info core.KindInfo) *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   info.Key + " FILE",
		Short: "Import " + info.Label + " from a CSV or XLSX file",
		Long: info.Description + ".\n\nAccepted columns: " + strings.Join(info.Fields, ", ") +
			"\nOther headers can be mapped with the columns section of a --job file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, deps, info.Key, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.job, "job", "", "YAML job file with column mapping and option overrides")
	flags.BoolVar(&f.noDeliverability, "no-deliverability", false, "Check e-mail syntax only, skip the DNS lookup")
	flags.BoolVar(&f.noCreateBank, "no-create-bank", false, "Do not create banks for unknown BICs")
	flags.BoolVar(&f.noInventory, "no-inventory", false, "Ignore stock_qty")
	flags.Int64Var(&f.location, "location", 0, "Stock location id (default: the warehouse stock location)")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Validate against the database but create nothing")
	flags.StringVar(&f.html, "html", "", "Write the HTML report to this file")
	flags.BoolVar(&f.json, "json", false, "Print the batch result as JSON instead of text")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

func runImport(cmd *cobra.Command, deps Deps, kind, path string, f importFlags) error {
	ctx := core.ContextWithSource(cmd.Context(), path)

	cfg, err := deps.LoadConfig()
	if err != nil {
		return err
	}
	setupLogging(deps, cfg, f.verbose)

	job := &Job{}
	if f.job != "" {
		if job, err = LoadJob(f.job); err != nil {
			return err
		}
		if job.Kind != "" && job.Kind != kind {
			return fmt.Errorf("job file %s is for %s, not %s", f.job, job.Kind, kind)
		}
	}

	opts := job.Options.Apply(application.BatchOptions(cfg.Import))
	if f.noDeliverability {
		opts.EmailCheckDeliverability = false
	}
	if f.noCreateBank {
		opts.CreateBank = false
	}
	if f.noInventory {
		opts.Inventory = false
	}
	if f.location != 0 {
		opts.LocationID = f.location
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	sheetOpts := job.SheetOptions()
	sheetOpts.MaxSize = cfg.Server.MaxUploadSize
	rows, err := sheet.Read(file, path, sheetOpts)
	if err != nil {
		return err
	}

	runner, closeFn, err := deps.Open(ctx, cfg, f.dryRun)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := runner.Run(ctx, kind, rows, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	if f.html != "" {
		if err := writeHTML(ctx, f.html, report.Page(res)); err != nil {
			return err
		}
	}

	if f.json {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	mode := ""
	if f.dryRun {
		mode = " (dry run, nothing was written)"
	}
	fmt.Fprintf(deps.Stdout, "%d rows read, %d %s created, %d rejected%s\n",
		res.Rows, len(res.Created), kind, len(res.Rejected), mode)
	return report.Text(deps.Stdout, res.Report)
}

func writeHTML(ctx context.Context, path string, page templ.Component) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := page.Render(ctx, out); err != nil {
		out.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return out.Close()
}
