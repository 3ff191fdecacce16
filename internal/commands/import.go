package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grantbook-dev/grantbook/internal/commit"
	"github.com/grantbook-dev/grantbook/internal/config"
	"github.com/grantbook-dev/grantbook/internal/importer"
	"github.com/grantbook-dev/grantbook/internal/match"
	"github.com/grantbook-dev/grantbook/internal/model"
)

func newImportCommand(getCfg func() *config.Config) *cobra.Command {
	var format string
	var lookupPath string
	var doCommit bool
	var includeAll bool
	var rowTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Reconcile a disbursement CSV against the record store",
		Long: `Parses a provider CSV export, matches each row against existing
organizations and pending grants, and prints the reviewable batch. With
--commit, applies the included rows as a single sequential batch. Without a
file argument, lists candidate CSVs in the configured import directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getCfg()
			if len(args) == 0 {
				return runScan(cfg)
			}
			if rowTimeout <= 0 {
				rowTimeout = cfg.Import.RowTimeout
			}
			return runImport(cmd, cfg, args[0], format, lookupPath, doCommit, includeAll, rowTimeout)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "CSV dialect: morganstanley or schwab (required with a file)")
	cmd.Flags().StringVar(&lookupPath, "lookup", "", "charity name to EIN lookup CSV (schwab exports)")
	cmd.Flags().BoolVar(&doCommit, "commit", false, "apply the included rows to the record store")
	cmd.Flags().BoolVar(&includeAll, "all", false, "include low-confidence rows in the commit")
	cmd.Flags().DurationVar(&rowTimeout, "timeout", 0, "per-row store timeout (default from config)")

	return cmd
}

func runScan(cfg *config.Config) error {
	files, err := importer.Scan(cfg.Import.Dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No CSV files in %s\n", cfg.Import.Dir)
		return nil
	}
	for _, f := range files {
		fmt.Printf("%s\t%d bytes\n", f.Path, f.Size)
	}
	return nil
}

func runImport(cmd *cobra.Command, cfg *config.Config, path, format, lookupPath string, doCommit, includeAll bool, rowTimeout time.Duration) error {
	ctx := cmd.Context()

	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		formats := importer.DefaultRegistry().Formats()
		sort.Strings(formats)
		return fmt.Errorf("unknown format %q (available: %s)", format, strings.Join(formats, ", "))
	}

	var lookup *importer.EinIndex
	if lookupPath != "" {
		lf, err := os.Open(lookupPath)
		if err != nil {
			return fmt.Errorf("opening lookup CSV: %w", err)
		}
		entries, err := importer.ParseEinLookup(lf)
		lf.Close()
		if err != nil {
			return err
		}
		lookup = importer.NewEinIndex(entries)
		zap.L().Info("loaded EIN lookup", zap.Int("entries", len(entries)))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening CSV: %w", err)
	}
	result, err := parser.Parse(f, lookup)
	f.Close()
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		fmt.Printf("warning: %s\n", msg)
	}
	if len(result.Rows) == 0 {
		return fmt.Errorf("no valid rows found in %s", path)
	}
	if len(result.UnmatchedNames) > 0 {
		fmt.Printf("\n%d charities had no EIN lookup hit:\n", len(result.UnmatchedNames))
		for _, name := range result.UnmatchedNames {
			fmt.Printf("  %s\n", name)
		}
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	orgs, err := st.Organizations(ctx)
	if err != nil {
		return err
	}
	pending, err := st.PendingGrants(ctx)
	if err != nil {
		return err
	}

	rows := match.BuildImportRows(result.Rows, orgs, pending, cfg.Match.Threshold)
	if includeAll {
		for i := range rows {
			rows[i].Included = true
		}
	}

	printReview(rows)

	if !doCommit {
		fmt.Println("\nRe-run with --commit to apply the included rows.")
		return nil
	}

	committer := commit.New(st, commit.Options{
		RowTimeout: rowTimeout,
		OnProgress: func(processed, total int) {
			fmt.Printf("\rcommitting %d/%d", processed, total)
		},
	})
	sum, err := committer.Run(ctx, rows)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("commit interrupted after %d/%d rows: %w", sum.Processed, sum.Total, err)
	}

	fmt.Printf("Imported %d grants: %d transitioned to paid, %d created, %d organizations created",
		sum.Transitioned+sum.Created, sum.Transitioned, sum.Created, sum.OrgsCreated)
	if sum.OrgErrors > 0 {
		fmt.Printf(", %d failed", sum.OrgErrors)
	}
	fmt.Println()

	markProcessed(cfg, path)
	return nil
}

func printReview(rows []model.ImportRow) {
	sum := match.Summarize(rows)

	fmt.Printf("\n%d rows: %d transitions, %d new grants, %d new organizations; %d low-confidence (excluded by default)\n\n",
		sum.Total, sum.Transitions, sum.NewGrants, sum.NewOrgs, sum.LowConfidence)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INCL\tORGANIZATION\tEIN\tAMOUNT\tDATE\tORG MATCH\tCONF\tGRANT")
	for _, r := range rows {
		incl := " "
		if r.Included {
			incl = "x"
		}
		orgMatch := string(r.Org.Kind)
		if r.Org.NameChanged {
			orgMatch += " (renamed)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			incl, r.Csv.OrgName, r.Csv.EIN, r.Csv.Amount.StringFixed(2), r.Csv.DatePaid,
			orgMatch, r.Org.Confidence, r.Grant.Kind)
	}
	tw.Flush()
}

// markProcessed moves the file into the processed subdirectory when it came
// from the configured import directory; files imported from elsewhere stay
// put.
func markProcessed(cfg *config.Config, path string) {
	absFile, err := filepath.Abs(path)
	if err != nil {
		return
	}
	absDir, err := filepath.Abs(cfg.Import.Dir)
	if err != nil {
		return
	}
	if filepath.Dir(absFile) != absDir {
		return
	}
	if err := importer.MarkProcessed(absDir, filepath.Base(absFile)); err != nil {
		zap.L().Warn("could not mark file processed", zap.Error(err))
	}
}
