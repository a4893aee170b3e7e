package availability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockVariantLookup is a mock implementation of the VariantLookup interface
type mockVariantLookup struct {
	inventory *VariantInventory
	error     error
}

func (m *mockVariantLookup) VariantInventory(_ context.Context, _ string) (*VariantInventory, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.inventory, nil
}

// mockCartLookup is a mock implementation of the CartLookup interface
type mockCartLookup struct {
	lines []CartLine
	error error
}

func (m *mockCartLookup) CartLines(_ context.Context, _ string) ([]CartLine, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.lines, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

var errLookup = errors.New("backend unreachable")

func Test_Reconciler_Check(t *testing.T) {
	testCases := []struct {
		name        string
		variants    *mockVariantLookup
		carts       *mockCartLookup
		request     Request
		expected    Snapshot
		expectError error
	}{
		{
			name:     "Missing variant ID is unavailable, not an error",
			variants: &mockVariantLookup{},
			carts:    &mockCartLookup{},
			request:  Request{CartID: "cart_1"},
			expected: Snapshot{InCartQuantity: 0, InStockQuantity: 0},
		},
		{
			name:     "Unknown variant has zero stock",
			variants: &mockVariantLookup{inventory: nil},
			carts:    &mockCartLookup{},
			request:  Request{VariantID: "variant_1"},
			expected: Snapshot{InCartQuantity: 0, InStockQuantity: 0},
		},
		{
			name:     "No cart ID means nothing in cart",
			variants: &mockVariantLookup{inventory: &VariantInventory{ManageInventory: true, InventoryQuantity: int64Ptr(5)}},
			carts:    &mockCartLookup{lines: []CartLine{{ID: "line_1", VariantID: "variant_1", Quantity: 3}}},
			request:  Request{VariantID: "variant_1"},
			expected: Snapshot{InCartQuantity: 0, InStockQuantity: 5},
		},
		{
			name:     "Cart quantity counted for the exact variant",
			variants: &mockVariantLookup{inventory: &VariantInventory{ManageInventory: true, InventoryQuantity: int64Ptr(5)}},
			carts: &mockCartLookup{lines: []CartLine{
				{ID: "line_1", VariantID: "variant_other", Quantity: 7},
				{ID: "line_2", VariantID: "variant_1", Quantity: 3},
			}},
			request:  Request{VariantID: "variant_1", CartID: "cart_1"},
			expected: Snapshot{InCartQuantity: 3, InStockQuantity: 5},
		},
		{
			name:     "Only the first matching line counts",
			variants: &mockVariantLookup{inventory: &VariantInventory{ManageInventory: true, InventoryQuantity: int64Ptr(5)}},
			carts: &mockCartLookup{lines: []CartLine{
				{ID: "line_1", VariantID: "variant_1", Quantity: 2},
				{ID: "line_2", VariantID: "variant_1", Quantity: 3},
			}},
			request:  Request{VariantID: "variant_1", CartID: "cart_1"},
			expected: Snapshot{InCartQuantity: 2, InStockQuantity: 5},
		},
		{
			name:     "Untracked inventory is unconstrained",
			variants: &mockVariantLookup{inventory: &VariantInventory{ManageInventory: false, InventoryQuantity: int64Ptr(0)}},
			carts:    &mockCartLookup{},
			request:  Request{VariantID: "variant_1"},
			expected: Snapshot{InCartQuantity: 0, InStockQuantity: Unlimited},
		},
		{
			name:     "Tracked inventory without a reported quantity is unconstrained",
			variants: &mockVariantLookup{inventory: &VariantInventory{ManageInventory: true, InventoryQuantity: nil}},
			carts:    &mockCartLookup{},
			request:  Request{VariantID: "variant_1"},
			expected: Snapshot{InCartQuantity: 0, InStockQuantity: Unlimited},
		},
		{
			name:     "Negative reported quantity clamps to zero",
			variants: &mockVariantLookup{inventory: &VariantInventory{ManageInventory: true, InventoryQuantity: int64Ptr(-2)}},
			carts:    &mockCartLookup{},
			request:  Request{VariantID: "variant_1"},
			expected: Snapshot{InCartQuantity: 0, InStockQuantity: 0},
		},
		{
			name:        "Variant lookup failure propagates",
			variants:    &mockVariantLookup{error: errLookup},
			carts:       &mockCartLookup{},
			request:     Request{VariantID: "variant_1"},
			expectError: errLookup,
		},
		{
			name:        "Cart lookup failure propagates",
			variants:    &mockVariantLookup{inventory: &VariantInventory{ManageInventory: true, InventoryQuantity: int64Ptr(5)}},
			carts:       &mockCartLookup{error: errLookup},
			request:     Request{VariantID: "variant_1", CartID: "cart_1"},
			expectError: errLookup,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			reconciler := NewReconciler(tc.variants, tc.carts)
			// when
			snapshot, err := reconciler.Check(context.Background(), tc.request)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, snapshot)
		})
	}
}

func Test_Snapshot_DecisionRules(t *testing.T) {
	// given: a cart holding 3 of a variant with stock of 5
	snapshot := Snapshot{InCartQuantity: 3, InStockQuantity: 5}

	// then: one more unit fits
	assert.True(t, snapshot.CanAdd())
	// setting to exactly the stock is permitted
	assert.True(t, snapshot.CanSetQuantity(5))
	// exceeding the stock is not
	assert.False(t, snapshot.CanSetQuantity(6))
	// zero is a removal and always permitted
	assert.True(t, snapshot.CanSetQuantity(0))

	// given: the cart already holds all available stock
	full := Snapshot{InCartQuantity: 5, InStockQuantity: 5}
	assert.False(t, full.CanAdd())

	// given: unconstrained stock
	unlimited := Snapshot{InCartQuantity: 1000, InStockQuantity: Unlimited}
	assert.True(t, unlimited.CanAdd())
	assert.True(t, unlimited.CanSetQuantity(1_000_000))
}
