package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtparse/internal/analyze"
	"github.com/cleared-dev/stmtparse/internal/pdftext"
)

func newAnalyzeCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Report how a statement's layout classifies, without reconciling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runAnalyze(cmd, args[0])
		},
	}
}

func (g *globals) runAnalyze(cmd *cobra.Command, path string) error {
	doc, err := pdftext.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer doc.Close()

	rep, err := analyze.Analyze(doc)
	if err != nil {
		return err
	}
	g.log.Debug().Str("file", path).Int("issues", len(rep.Issues)).Msg("analyzed")

	if g.quiet {
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Analyzing %s\n", path)
	return rep.Print(cmd.OutOrStdout())
}
