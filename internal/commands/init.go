package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grantbook-dev/grantbook/internal/config"
)

func newInitCommand() *cobra.Command {
	var foundationID string
	var userID string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Grantbook project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, foundationID, userID)
		},
	}

	cmd.Flags().StringVar(&foundationID, "foundation", "", "foundation id (required)")
	_ = cmd.MarkFlagRequired("foundation")
	cmd.Flags().StringVar(&userID, "user", "", "acting user id")

	return cmd
}

func runInit(dir, foundationID, userID string) error {
	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(foundationID, userID)
	if err := config.Save(filepath.Join(dir, "grantbook.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Initialized Grantbook project in %s\n", dir)
	return nil
}
