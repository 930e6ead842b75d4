// Package cmd provides the storefront CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/config"
	"storefront/logging"
)

var (
	cfgFile string
	verbose bool

	// cfg is loaded once in initConfig for every command
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Print shop storefront: catalog, cart pricing and orders",
	Long: `storefront serves the catalog, cart and checkout API of a print shop.

Items carry tiered quantity rules and nested option trees; every cart and
order total is computed on the server.

Examples:
  storefront serve
  storefront migrate
  storefront seed catalog.yaml --user admin
  storefront quote quote.yaml`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $CONFIG_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(quoteCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}
