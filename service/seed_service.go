package service

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"storefront/logging"
	"storefront/models"
	"storefront/pricing"
)

// SeedCatalog is the YAML layout accepted by the seed command:
//
//	categories:
//	  - name: Business Cards
//	    items:
//	      - name: Standard Card
//	        price: 0.12
//	        minimumQuantity: 100
//	        circulation: 50
//	        conditionalFields:
//	          - text: Paper
//	            children:
//	              - {text: Matte, value: 0}
//	              - {text: Glossy, value: 0.02}
type SeedCatalog struct {
	Categories []SeedCategory `yaml:"categories"`
}

// SeedCategory is a category with the items to create inside it
type SeedCategory struct {
	models.CategoryRequest `yaml:",inline"`
	Items                  []models.ItemRequest `yaml:"items"`
}

// SeedResult counts what a seed run created
type SeedResult struct {
	Categories int `json:"categories"`
	Items      int `json:"items"`
}

// ParseSeed decodes a seed catalog
func ParseSeed(r io.Reader) (*SeedCatalog, error) {
	var catalog SeedCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &catalog, nil
}

// Seed creates every category and item of the catalog as userID. It stops
// at the first rejected entry.
func Seed(ctx context.Context, catalog *CatalogService, seed *SeedCatalog, userID string) (SeedResult, error) {
	var res SeedResult
	for _, sc := range seed.Categories {
		req := sc.CategoryRequest
		cat, err := catalog.CreateCategory(ctx, &req, userID)
		if err != nil {
			return res, fmt.Errorf("category %q: %w", sc.Name, err)
		}
		res.Categories++
		logging.Sugar.Infof("✓ Seeded category %s", cat.Name)

		for _, item := range sc.Items {
			item := item
			item.CategoryID = cat.ID
			created, err := catalog.CreateItem(ctx, &item, userID)
			if err != nil {
				return res, fmt.Errorf("item %q: %w", item.Name, err)
			}
			res.Items++
			logging.Sugar.Infof("✓ Seeded item %s (%s)", created.Name, created.Slug)
		}
	}
	return res, nil
}

// QuoteFile describes an offline quote: an item definition plus the
// requested configuration. YAML or JSON.
type QuoteFile struct {
	Item       models.ItemRequest  `yaml:"item"`
	Quantity   int                 `yaml:"quantity"`
	Selections []pricing.Selection `yaml:"selections"`
}

// EvaluateQuoteFile validates the item of a quote file and evaluates it
func EvaluateQuoteFile(r io.Reader) (pricing.Quote, error) {
	var qf QuoteFile
	if err := yaml.NewDecoder(r).Decode(&qf); err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to parse quote file: %w", err)
	}

	normalizeItemRequest(&qf.Item)
	if err := qf.Item.Constraint.Validate(); err != nil {
		return pricing.Quote{}, err
	}
	tree := pricing.Ingest(qf.Item.ConditionalFields)
	if err := tree.Validate(); err != nil {
		return pricing.Quote{}, err
	}

	return pricing.Evaluate(pricing.QuoteInput{
		BasePrice:  qf.Item.Price,
		Constraint: qf.Item.Constraint,
		Tree:       tree,
		Requested:  qf.Quantity,
		Selections: qf.Selections,
	}), nil
}
