package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtparse/internal/batch"
	"github.com/cleared-dev/stmtparse/internal/export"
	"github.com/cleared-dev/stmtparse/internal/extract"
)

type parseFlags struct {
	file      string
	dir       string
	output    string
	separator string
	lenient   bool
	tolerance string
	feeAware  bool
}

func newParseCommand(g *globals) *cobra.Command {
	var f parseFlags

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Extract and reconcile statements into CSV files",
		Long: `Extract every transaction from a statement, check it against the
statement's opening and closing balances, and write it as CSV.

With -f the output is a file (default: the input with a .csv extension).
With -d every .pdf and .txt statement in the directory is converted and
the output is a directory (default: the input directory); failures are
recorded in run-log.csv and do not stop the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := g.runner(cmd, f)
			if err != nil {
				return err
			}
			if f.file != "" {
				return g.parseFile(cmd, runner, f)
			}
			return g.parseDir(cmd, runner, f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "single statement to convert")
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "directory of statements to convert")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (-f) or directory (-d)")
	cmd.Flags().StringVarP(&f.separator, "separator", "s", "", `CSV separator, a single character or "tab"`)
	cmd.Flags().BoolVar(&f.lenient, "lenient", false, "accept balance discrepancies up to --tolerance as warnings")
	cmd.Flags().StringVar(&f.tolerance, "tolerance", "", "largest discrepancy --lenient accepts (default 30.00)")
	cmd.Flags().BoolVar(&f.feeAware, "fee-aware", true, "include bank fees in balance checks")
	cmd.MarkFlagsMutuallyExclusive("file", "dir")
	cmd.MarkFlagsOneRequired("file", "dir")

	return cmd
}

// runner merges flags over the config and builds a batch runner.
func (g *globals) runner(cmd *cobra.Command, f parseFlags) (*batch.Runner, error) {
	cfg := *g.cfg
	flags := cmd.Flags()
	if flags.Changed("lenient") {
		cfg.Validation.Lenient = f.lenient
	}
	if flags.Changed("fee-aware") {
		cfg.Validation.FeeAware = f.feeAware
	}
	if flags.Changed("tolerance") {
		if _, err := decimal.NewFromString(f.tolerance); err != nil {
			return nil, fmt.Errorf("invalid --tolerance %q: %w", f.tolerance, err)
		}
		cfg.Validation.Tolerance = f.tolerance
	}
	if flags.Changed("separator") {
		cfg.Output.Separator = f.separator
	}

	opts, err := cfg.ValidationOptions()
	if err != nil {
		return nil, err
	}
	sep, err := cfg.Separator()
	if err != nil {
		return nil, err
	}

	r := batch.NewRunner(f.output)
	r.Extractor = &extract.Extractor{Validation: opts, Logger: g.log}
	r.Writer = export.NewWriter(sep)
	r.Logger = g.log
	return r, nil
}

func (g *globals) parseFile(cmd *cobra.Command, r *batch.Runner, f parseFlags) error {
	dst := f.output
	if dst == "" {
		dst = strings.TrimSuffix(f.file, filepath.Ext(f.file)) + ".csv"
	}

	out := r.Convert(f.file, dst)
	if !out.OK() {
		return fmt.Errorf("processing %s [%s]: %w", f.file, extract.Kind(out.Err), out.Err)
	}
	g.printf(cmd, "%s: %d transactions, %d warnings -> %s\n", f.file, out.Transactions, out.Warnings, dst)
	return nil
}

func (g *globals) parseDir(cmd *cobra.Command, r *batch.Runner, f parseFlags) error {
	if r.OutputDir == "" {
		r.OutputDir = f.dir
	}

	files, err := batch.Scan(f.dir)
	if err != nil {
		return err
	}
	sum, err := r.Run(files)
	if err != nil {
		return err
	}

	for _, o := range sum.Outcomes {
		if o.OK() {
			g.printf(cmd, "%s: %d transactions, %d warnings -> %s\n", o.File, o.Transactions, o.Warnings, o.Output)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "ERROR processing %s [%s]: %v\n", o.File, extract.Kind(o.Err), o.Err)
		}
	}
	g.printf(cmd, "Processing complete: %d files succeeded, %d files failed\n", sum.Succeeded, sum.Failed)

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d statements failed", sum.Failed, len(files))
	}
	return nil
}
