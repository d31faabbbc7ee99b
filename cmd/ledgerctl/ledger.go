package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/JonMunkholm/ledger/internal/spreadsheet"
	"github.com/spf13/cobra"
)

var errAborted = errors.New("import aborted")

func (a *app) importCmd() *cobra.Command {
	var yes, dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the whole ledger with a .csv or .xlsx export",
		Long: `import deletes every invoice and loads FILE in its place, atomically.

The header row is matched case-insensitively: "id" or "issue number" for the
invoice id and "name" for the customer are required. Description, amount and
date columns are optional. A snapshot of the current ledger is archived first
when ARCHIVE_DIR or ARCHIVE_GCS_BUCKET is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if dryRun {
				rows, err := readRows(path)
				if err != nil {
					return err
				}
				preview, err := a.service.PreviewImport(auditCtx(cmd), filepath.Base(path), rows)
				if err != nil {
					return errors.New(userError(err))
				}
				return printPreview(cmd.OutOrStdout(), preview)
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Replace every invoice with the contents of %s?", filepath.Base(path)))
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}

			rows, err := readRows(path)
			if err != nil {
				return err
			}
			result, err := a.service.ImportRows(auditCtx(cmd), filepath.Base(path), rows)
			if err != nil {
				return errors.New(userError(err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d invoices into %s (%d blank rows skipped)\n",
				result.Imported, result.Relation, result.Skipped)
			if result.Snapshot != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "previous ledger archived to %s\n", result.Snapshot)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without writing")
	return cmd
}

func printPreview(w io.Writer, p *core.PreviewResponse) error {
	s := p.Summary
	fmt.Fprintf(w, "%d rows: %d new, %d changed, %d unchanged, %d removed, %d blank rows skipped\n",
		s.TotalRows, s.NewRows, s.UpdateRows, s.UnchangedRows, s.RemovedRows, s.SkippedRows)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, rec := range p.NewSamples {
		fmt.Fprintf(tw, "+ %s\t%s\t%s\n", rec.ID, rec.CustomerName, rec.Amount)
	}
	for _, d := range p.UpdateDiffs {
		fmt.Fprintf(tw, "~ %s\t%s\t%s\n", d.ID, d.Incoming.CustomerName, strings.Join(d.Changed, ", "))
	}
	for _, rec := range p.RemovedSamples {
		fmt.Fprintf(tw, "- %s\t%s\t%s\n", rec.ID, rec.CustomerName, rec.Amount)
	}
	return tw.Flush()
}

// readRows parses a .csv or .xlsx file into rows.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return core.ReadCSV(f)
	case ".xlsx":
		return spreadsheet.ReadRows(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q: use .csv or .xlsx", ext)
	}
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func (a *app) exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the ledger as CSV or XLSX",
		Long: `export writes every invoice to FILE, or to stdout when FILE is omitted or "-".
The format follows the file extension unless --format is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			if format == "" {
				format = "csv"
				if strings.EqualFold(filepath.Ext(path), ".xlsx") {
					format = "xlsx"
				}
			}

			var render core.ExportFunc
			switch strings.ToLower(format) {
			case "csv":
				render = core.WriteCSV
			case "xlsx":
				render = spreadsheet.WriteLedger
			default:
				return fmt.Errorf("unknown format %q: use csv or xlsx", format)
			}

			var buf bytes.Buffer
			n, err := a.service.Export(auditCtx(cmd), &buf, render)
			if err != nil {
				return errors.New(userError(err))
			}

			if path == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d invoices to %s\n", n, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "csv or xlsx")
	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print total sales, top customers and the most expensive invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.service.Summary(auditCtx(cmd))
			if err != nil {
				return errors.New(userError(err))
			}
			if asJSON {
				if summary.TopCustomers == nil {
					summary.TopCustomers = []core.CustomerTotal{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printSummary(w io.Writer, s core.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total sales:\t%.2f\n", s.TotalSales)
	if s.TopCustomer != nil {
		fmt.Fprintf(tw, "Top customer:\t%s (%.2f)\n", s.TopCustomer.Name, s.TopCustomer.Total)
	} else {
		fmt.Fprintf(tw, "Top customer:\t-\n")
	}
	if m := s.MostExpensive; m != nil {
		fmt.Fprintf(tw, "Most expensive:\t#%s %s (%s)\n", m.ID, m.CustomerName, m.Amount)
	} else {
		fmt.Fprintf(tw, "Most expensive:\t-\n")
	}
	if len(s.TopCustomers) > 0 {
		fmt.Fprintln(tw, "\nCustomer\tTotal")
		for _, c := range s.TopCustomers {
			fmt.Fprintf(tw, "%s\t%.2f\n", c.Name, c.Total)
		}
	}
	return tw.Flush()
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the invoice table or add missing columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := a.service.Migrate(auditCtx(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "table %s is up to date\n", rel)
			return nil
		},
	}
}

func (a *app) snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Archive the current ledger to the configured snapshot destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Archive.Enabled() {
				return errors.New("no snapshot destination: set ARCHIVE_DIR or ARCHIVE_GCS_BUCKET")
			}
			location, err := a.service.Snapshot(auditCtx(cmd), "manual")
			if err != nil {
				return errors.New(userError(err))
			}
			if location == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "ledger is empty, nothing archived")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived to %s\n", location)
			return nil
		},
	}
}

// userError renders err with its support code, keeping the technical detail
// for anything unmapped.
func userError(err error) string {
	if !core.IsUserFacing(err) {
		return err.Error()
	}
	return core.FormatUserError(err) + " [" + err.Error() + "]"
}
