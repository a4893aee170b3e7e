package catalog

import (
	"net/url"
	"strings"
)

// NormalizeOptionName lower-cases and trims an option title for use as a
// combination map key.
func NormalizeOptionName(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// NormalizeOptionValue percent-decodes and lower-cases an option value. Some
// upstream values arrive URL-encoded; a value that fails to decode is kept as is.
func NormalizeOptionValue(value string) string {
	decoded, err := url.PathUnescape(value)
	if err != nil {
		decoded = value
	}
	return strings.ToLower(decoded)
}

// GetAllCombinations projects a variant list into combinations, one per
// variant and in the same order. No sorting or deduplication is performed:
// duplicate option sets in the source data are preserved and resolved by
// first-match on lookup. A nil variant list yields an empty slice.
func GetAllCombinations(variants []Variant) []Combination {
	combinations := make([]Combination, 0, len(variants))
	for _, v := range variants {
		options := make(map[string]string, len(v.Options))
		for _, o := range v.Options {
			options[NormalizeOptionName(o.Title)] = NormalizeOptionValue(o.Value)
		}
		var price *Money
		if v.CalculatedPrice != nil {
			p := *v.CalculatedPrice
			price = &p
		}
		combinations = append(combinations, Combination{
			ID:               v.ID,
			Title:            v.Title,
			Price:            price,
			AvailableForSale: availableForSale(v),
			Options:          options,
		})
	}
	return combinations
}

// availableForSale reports whether a variant can be sold right now. Variants
// without inventory management are always for sale; tracked variants need a
// positive quantity.
func availableForSale(v Variant) bool {
	if !v.ManageInventory {
		return true
	}
	return v.InventoryQuantity != nil && *v.InventoryQuantity > 0
}
