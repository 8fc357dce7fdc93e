package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	MIGRATION_PATH = "cmd/migration/migrations"
	MIGRATION_DB   = "postgres"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migration",
		Short:         "Schema, seed and one-off assignment tooling for turnover",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newUpCmd())
	root.AddCommand(newDownCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newPassCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
