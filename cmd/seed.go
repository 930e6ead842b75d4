package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/app"
	"storefront/service"
)

var seedUser string

// seedCmd loads a YAML catalog into the store
var seedCmd = &cobra.Command{
	Use:   "seed <catalog.yaml>",
	Short: "Create the categories and items of a YAML catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedUser, "user", "u", "admin", "user id that owns the seeded records")
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	seed, err := service.ParseSeed(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := service.Seed(ctx, a.Catalog, seed, seedUser)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories and %d items\n", res.Categories, res.Items)
	return nil
}
