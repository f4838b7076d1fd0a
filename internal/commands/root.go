package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtparse/internal/buildinfo"
	"github.com/cleared-dev/stmtparse/internal/config"
	"github.com/cleared-dev/stmtparse/internal/logger"
)

// globals are the persistent flags plus what they resolve to.
type globals struct {
	configPath string
	envFile    string
	debug      bool
	quiet      bool

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "stmtparse",
		Short:   "Convert bank statements into reconciled transaction CSVs",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default ./"+config.FileName+" when present)")
	flags.StringVar(&g.envFile, "env-file", "", "file of STMTPARSE_* variables (default ./.env when present)")
	flags.BoolVar(&g.debug, "debug", false, "log every page and state transition")
	flags.BoolVarP(&g.quiet, "quiet", "q", false, "print only errors")

	rootCmd.AddCommand(newParseCommand(g))
	rootCmd.AddCommand(newAnalyzeCommand(g))
	rootCmd.AddCommand(newServeCommand(g))

	return rootCmd
}

func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.Resolve(g.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(g.envFile); err != nil {
		return err
	}

	level := cfg.Log.Level
	switch {
	case g.debug:
		level = "debug"
	case g.quiet:
		level = "error"
	}
	log, err := logger.NewWithOutput(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return err
	}

	g.cfg = cfg
	g.log = log
	return nil
}

// printf writes progress to stdout unless --quiet.
func (g *globals) printf(cmd *cobra.Command, format string, args ...any) {
	if g.quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
