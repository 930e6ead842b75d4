package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pricing"
)

const quoteFile = `
item:
  name: Business Cards
  price: 0.12
  minimumQuantity: 100
  maximumQuantity: 1000
  circulation: 50
  conditionalFields:
    - text: Paper
      children:
        - {text: Matte, value: 0}
        - {text: Glossy, value: 0.02}
quantity: 130
selections:
  - {field: 0, path: [1]}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV", "production")
	t.Setenv("CURRENCY", "USD")
	t.Setenv("CURRENCY_DECIMALS", "2")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		quoteFormat = "text"
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQuoteText(t *testing.T) {
	out, err := run(t, "quote", writeFile(t, "quote.yaml", quoteFile))
	require.NoError(t, err)

	assert.Contains(t, out, "Quantity:  150 (requested 130)")
	assert.Contains(t, out, "Options:   Paper → Glossy (+$0.02 per unit)")
	assert.Contains(t, out, "Total:     $21.00")
}

func TestQuoteJSON(t *testing.T) {
	out, err := run(t, "quote", "--format", "json", writeFile(t, "quote.yaml", quoteFile))
	require.NoError(t, err)

	var q pricing.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, 150, q.Quantity)
	assert.True(t, q.Complete())
}

func TestQuoteRejectsInvalidItem(t *testing.T) {
	bad := "item: {price: 1, minimumQuantity: 10, circulation: 4}\nquantity: 12\n"
	_, err := run(t, "quote", writeFile(t, "bad.yaml", bad))
	assert.Error(t, err)
}

func TestSeedIntoSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "store.db"))
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("IMAGE_DIR", t.TempDir())

	catalog := `
categories:
  - name: Stickers
    items:
      - name: Round Sticker
        price: 0.3
        minimumQuantity: 50
        circulation: 25
`
	out, err := run(t, "seed", writeFile(t, "catalog.yaml", catalog))
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 1 categories and 1 items")
}
