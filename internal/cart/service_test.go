package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/abgdnv/storefront/internal/availability"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChecker is a mock implementation of the AvailabilityChecker interface
type mockChecker struct {
	snapshot availability.Snapshot
	error    error
	calls    int
}

func (m *mockChecker) Check(_ context.Context, _ availability.Request) (availability.Snapshot, error) {
	m.calls++
	return m.snapshot, m.error
}

// mockMutator is a mock implementation of the Mutator interface
type mockMutator struct {
	error error

	addCalls    int
	updateCalls int
	deleteCalls int

	lastCartID    string
	lastLineID    string
	lastVariantID string
	lastQuantity  int64
}

func (m *mockMutator) AddLine(_ context.Context, cartID, variantID string, quantity int64) error {
	m.addCalls++
	m.lastCartID, m.lastVariantID, m.lastQuantity = cartID, variantID, quantity
	return m.error
}

func (m *mockMutator) UpdateLine(_ context.Context, cartID, lineID string, quantity int64) error {
	m.updateCalls++
	m.lastCartID, m.lastLineID, m.lastQuantity = cartID, lineID, quantity
	return m.error
}

func (m *mockMutator) DeleteLine(_ context.Context, cartID, lineID string) error {
	m.deleteCalls++
	m.lastCartID, m.lastLineID = cartID, lineID
	return m.error
}

// mockPublisher is a mock implementation of the messaging.Publisher interface
type mockPublisher struct {
	error    error
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.subjects = append(m.subjects, event.Subject())
	return m.error
}

var errBackend = errors.New("backend failure")

func Test_Service_AddItem(t *testing.T) {
	testCases := []struct {
		name          string
		checker       *mockChecker
		mutator       *mockMutator
		cartID        string
		variantID     string
		expectError   error
		expectAddCall bool
	}{
		{
			name:          "Adds one unit when stock permits",
			checker:       &mockChecker{snapshot: availability.Snapshot{InCartQuantity: 1, InStockQuantity: 5}},
			mutator:       &mockMutator{},
			cartID:        "cart_1",
			variantID:     "variant_1",
			expectAddCall: true,
		},
		{
			name:        "Refuses when the cart holds all available stock",
			checker:     &mockChecker{snapshot: availability.Snapshot{InCartQuantity: 5, InStockQuantity: 5}},
			mutator:     &mockMutator{},
			cartID:      "cart_1",
			variantID:   "variant_1",
			expectError: ErrOutOfStock,
		},
		{
			name:        "Missing cart ID",
			checker:     &mockChecker{},
			mutator:     &mockMutator{},
			variantID:   "variant_1",
			expectError: ErrMissingCart,
		},
		{
			name:        "Missing variant ID",
			checker:     &mockChecker{},
			mutator:     &mockMutator{},
			cartID:      "cart_1",
			expectError: ErrMissingVariant,
		},
		{
			name:        "Availability check failure propagates",
			checker:     &mockChecker{error: errBackend},
			mutator:     &mockMutator{},
			cartID:      "cart_1",
			variantID:   "variant_1",
			expectError: errBackend,
		},
		{
			name:          "Mutation failure propagates",
			checker:       &mockChecker{snapshot: availability.Snapshot{InStockQuantity: availability.Unlimited}},
			mutator:       &mockMutator{error: errBackend},
			cartID:        "cart_1",
			variantID:     "variant_1",
			expectError:   errBackend,
			expectAddCall: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.checker, tc.mutator, nil)
			// when
			err := service.AddItem(context.Background(), tc.cartID, tc.variantID)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
			} else {
				require.NoError(t, err)
			}
			if tc.expectAddCall {
				assert.Equal(t, 1, tc.mutator.addCalls)
				assert.Equal(t, tc.cartID, tc.mutator.lastCartID)
				assert.Equal(t, tc.variantID, tc.mutator.lastVariantID)
				assert.Equal(t, int64(1), tc.mutator.lastQuantity)
			} else {
				assert.Zero(t, tc.mutator.addCalls)
			}
		})
	}
}

func Test_Service_SetItemQuantity(t *testing.T) {
	t.Run("Sets an absolute quantity when stock permits", func(t *testing.T) {
		// given
		checker := &mockChecker{snapshot: availability.Snapshot{InCartQuantity: 1, InStockQuantity: 5}}
		mutator := &mockMutator{}
		service := NewService(checker, mutator, nil)
		// when
		err := service.SetItemQuantity(context.Background(), "cart_1", "line_1", "variant_1", 4)
		// then
		require.NoError(t, err)
		assert.Equal(t, 1, mutator.updateCalls)
		assert.Equal(t, "line_1", mutator.lastLineID)
		assert.Equal(t, int64(4), mutator.lastQuantity)
	})

	t.Run("Refuses a quantity above stock", func(t *testing.T) {
		// given
		checker := &mockChecker{snapshot: availability.Snapshot{InCartQuantity: 1, InStockQuantity: 5}}
		mutator := &mockMutator{}
		service := NewService(checker, mutator, nil)
		// when
		err := service.SetItemQuantity(context.Background(), "cart_1", "line_1", "variant_1", 6)
		// then
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.Zero(t, mutator.updateCalls)
	})

	t.Run("Zero quantity removes the line without a check", func(t *testing.T) {
		// given
		checker := &mockChecker{}
		mutator := &mockMutator{}
		service := NewService(checker, mutator, nil)
		// when
		err := service.SetItemQuantity(context.Background(), "cart_1", "line_1", "variant_1", 0)
		// then
		require.NoError(t, err)
		assert.Zero(t, checker.calls)
		assert.Zero(t, mutator.updateCalls)
		assert.Equal(t, 1, mutator.deleteCalls)
		assert.Equal(t, "line_1", mutator.lastLineID)
	})

	t.Run("Missing cart ID", func(t *testing.T) {
		// given
		service := NewService(&mockChecker{}, &mockMutator{}, nil)
		// when
		err := service.SetItemQuantity(context.Background(), "", "line_1", "variant_1", 2)
		// then
		assert.ErrorIs(t, err, ErrMissingCart)
	})
}

func Test_Service_RemoveItem(t *testing.T) {
	t.Run("Deletes the line", func(t *testing.T) {
		// given
		mutator := &mockMutator{}
		service := NewService(&mockChecker{}, mutator, nil)
		// when
		err := service.RemoveItem(context.Background(), "cart_1", "line_1")
		// then
		require.NoError(t, err)
		assert.Equal(t, 1, mutator.deleteCalls)
	})

	t.Run("Deletion failure propagates", func(t *testing.T) {
		// given
		mutator := &mockMutator{error: errBackend}
		service := NewService(&mockChecker{}, mutator, nil)
		// when
		err := service.RemoveItem(context.Background(), "cart_1", "line_1")
		// then
		assert.ErrorIs(t, err, errBackend)
	})
}

func Test_Service_Publishing(t *testing.T) {
	t.Run("Successful mutations emit events", func(t *testing.T) {
		// given
		checker := &mockChecker{snapshot: availability.Snapshot{InStockQuantity: availability.Unlimited}}
		mutator := &mockMutator{}
		publisher := &mockPublisher{}
		service := NewService(checker, mutator, publisher)
		// when
		require.NoError(t, service.AddItem(context.Background(), "cart_1", "variant_1"))
		require.NoError(t, service.SetItemQuantity(context.Background(), "cart_1", "line_1", "variant_1", 2))
		require.NoError(t, service.RemoveItem(context.Background(), "cart_1", "line_1"))
		// then
		assert.Equal(t, []string{
			"storefront.cart.line_added",
			"storefront.cart.line_updated",
			"storefront.cart.line_removed",
		}, publisher.subjects)
	})

	t.Run("Publish failure does not fail the mutation", func(t *testing.T) {
		// given
		checker := &mockChecker{snapshot: availability.Snapshot{InStockQuantity: availability.Unlimited}}
		mutator := &mockMutator{}
		publisher := &mockPublisher{error: errors.New("nats unavailable")}
		service := NewService(checker, mutator, publisher)
		// when
		err := service.AddItem(context.Background(), "cart_1", "variant_1")
		// then
		require.NoError(t, err)
		assert.Equal(t, 1, mutator.addCalls)
	})

	t.Run("Refused mutations emit nothing", func(t *testing.T) {
		// given
		checker := &mockChecker{snapshot: availability.Snapshot{InCartQuantity: 5, InStockQuantity: 5}}
		publisher := &mockPublisher{}
		service := NewService(checker, &mockMutator{}, publisher)
		// when
		err := service.AddItem(context.Background(), "cart_1", "variant_1")
		// then
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.Empty(t, publisher.subjects)
	})
}
