package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func Test_GetAllCombinations(t *testing.T) {
	price := &Money{Amount: 19.99, CurrencyCode: "usd"}

	testCases := []struct {
		name     string
		variants []Variant
		expected []Combination
	}{
		{
			name:     "Nil variant list yields empty slice",
			variants: nil,
			expected: []Combination{},
		},
		{
			name: "One combination per variant, input order preserved",
			variants: []Variant{
				{ID: "variant_1", Title: "Red / M", Options: []OptionValue{{Title: "Color", Value: "Red"}, {Title: "Size", Value: "M"}}, CalculatedPrice: price},
				{ID: "variant_2", Title: "Blue / M", Options: []OptionValue{{Title: "Color", Value: "Blue"}, {Title: "Size", Value: "M"}}},
			},
			expected: []Combination{
				{ID: "variant_1", Title: "Red / M", Price: price, AvailableForSale: true, Options: map[string]string{"color": "red", "size": "m"}},
				{ID: "variant_2", Title: "Blue / M", AvailableForSale: true, Options: map[string]string{"color": "blue", "size": "m"}},
			},
		},
		{
			name: "URL-encoded option values are percent-decoded",
			variants: []Variant{
				{ID: "variant_1", Title: "Light Blue", Options: []OptionValue{{Title: "Color", Value: "Light%20Blue"}}},
			},
			expected: []Combination{
				{ID: "variant_1", Title: "Light Blue", AvailableForSale: true, Options: map[string]string{"color": "light blue"}},
			},
		},
		{
			name: "Duplicate option sets are preserved, not deduplicated",
			variants: []Variant{
				{ID: "variant_1", Options: []OptionValue{{Title: "Color", Value: "Red"}}},
				{ID: "variant_2", Options: []OptionValue{{Title: "Color", Value: "Red"}}},
			},
			expected: []Combination{
				{ID: "variant_1", AvailableForSale: true, Options: map[string]string{"color": "red"}},
				{ID: "variant_2", AvailableForSale: true, Options: map[string]string{"color": "red"}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			combinations := GetAllCombinations(tc.variants)
			// then
			assert.Equal(t, tc.expected, combinations)
		})
	}
}

func Test_GetAllCombinations_AvailableForSale(t *testing.T) {
	testCases := []struct {
		name      string
		variant   Variant
		available bool
	}{
		{
			name:      "Untracked inventory is always for sale",
			variant:   Variant{ID: "v", ManageInventory: false, InventoryQuantity: int64Ptr(0)},
			available: true,
		},
		{
			name:      "Tracked inventory with stock",
			variant:   Variant{ID: "v", ManageInventory: true, InventoryQuantity: int64Ptr(5)},
			available: true,
		},
		{
			name:      "Tracked inventory with zero stock",
			variant:   Variant{ID: "v", ManageInventory: true, InventoryQuantity: int64Ptr(0)},
			available: false,
		},
		{
			name:      "Tracked inventory with no reported quantity",
			variant:   Variant{ID: "v", ManageInventory: true, InventoryQuantity: nil},
			available: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			combinations := GetAllCombinations([]Variant{tc.variant})
			// then
			require.Len(t, combinations, 1)
			assert.Equal(t, tc.available, combinations[0].AvailableForSale)
		})
	}
}

func Test_GetAllCombinations_IDsMatchSourceOrder(t *testing.T) {
	// given
	variants := []Variant{{ID: "variant_3"}, {ID: "variant_1"}, {ID: "variant_2"}}
	// when
	combinations := GetAllCombinations(variants)
	// then
	require.Len(t, combinations, len(variants))
	for i := range variants {
		assert.Equal(t, variants[i].ID, combinations[i].ID)
	}
}
