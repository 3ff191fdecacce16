package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grantbook-dev/grantbook/internal/buildinfo"
	"github.com/grantbook-dev/grantbook/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	var cfgPath string
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:     "grantbook",
		Short:   "Grant disbursement import and reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = c
			return config.InitLogger(cfg.Log)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to grantbook.yaml")

	getCfg := func() *config.Config { return cfg }
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(getCfg))
	rootCmd.AddCommand(newMigrateCommand(getCfg))

	return rootCmd
}
