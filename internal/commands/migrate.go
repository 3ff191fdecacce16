package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grantbook-dev/grantbook/internal/config"
)

func newMigrateCommand(getCfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the record store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, getCfg())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(ctx); err != nil {
				return err
			}
			fmt.Println("Migration complete")
			return nil
		},
	}
}
