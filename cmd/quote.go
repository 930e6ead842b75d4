package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storefront/service"
	"storefront/utils"
)

var quoteFormat string

// quoteCmd evaluates an item configuration without a database
var quoteCmd = &cobra.Command{
	Use:   "quote <quote.yaml>",
	Short: "Price an item configuration from a YAML or JSON file",
	Long: `Resolve the requested quantity through the item's quantity rules and
compute the line total of the selected options.

Example file:
  item:
    name: Business Cards
    price: 0.12
    minimumQuantity: 100
    circulation: 50
    conditionalFields:
      - text: Paper
        children:
          - {text: Matte, value: 0}
          - {text: Glossy, value: 0.02}
  quantity: 130
  selections:
    - {field: 0, path: [1]}`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "text", "output format (text, json)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open quote file: %w", err)
	}
	defer f.Close()

	q, err := service.EvaluateQuoteFile(f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if quoteFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	}

	money := utils.NewMoney(cfg.Currency.Code, cfg.Currency.Decimals)
	fmt.Fprintf(out, "Quantity:  %d", q.Quantity)
	if q.Adjusted {
		fmt.Fprintf(out, " (requested %d)", q.RequestedQuantity)
	}
	fmt.Fprintln(out)
	if q.OptionsLabel != "" {
		fmt.Fprintf(out, "Options:   %s (+%s per unit)\n", q.OptionsLabel, money.Format(q.OptionsPrice))
	}
	fmt.Fprintf(out, "Unit:      %s\n", money.Format(q.UnitPrice))
	fmt.Fprintf(out, "Total:     %s\n", money.Format(q.LineTotal))
	if !q.Satisfiable {
		fmt.Fprintln(out, "Warning:   the quantity rules admit no quantity")
	}
	if len(q.MissingFields) > 0 {
		fmt.Fprintf(out, "Missing:   %s\n", strings.Join(q.MissingFields, ", "))
	}
	return nil
}
