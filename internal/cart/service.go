// Package cart implements availability-gated cart mutations against the
// commerce backend.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/internal/availability"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Mutator issues line item mutations on the cart-owning backend. Mutations
// fire only after a successful availability check; the backend remains the
// final source of truth for stock limits.
type Mutator interface {
	// AddLine adds a new line item for the variant.
	AddLine(ctx context.Context, cartID, variantID string, quantity int64) error

	// UpdateLine sets an existing line item to an absolute quantity.
	UpdateLine(ctx context.Context, cartID, lineID string, quantity int64) error

	// DeleteLine removes a line item from the cart.
	DeleteLine(ctx context.Context, cartID, lineID string) error
}

// AvailabilityChecker computes the availability snapshot for a (variant, cart) pair.
type AvailabilityChecker interface {
	Check(ctx context.Context, req availability.Request) (availability.Snapshot, error)
}

// Service implements the cart operations exposed to the storefront.
type Service struct {
	checker    AvailabilityChecker
	mutator    Mutator
	publisher  messaging.Publisher
	linesAdded metric.Int64Counter
}

// NewService creates a new cart service. The publisher may be nil, in which
// case no events are emitted.
func NewService(checker AvailabilityChecker, mutator Mutator, publisher messaging.Publisher) *Service {
	meter := otel.Meter("storefront-cart")
	linesAdded, err := meter.Int64Counter("cart_lines_added", metric.WithDescription("Total number of cart lines added"))
	if err != nil {
		panic(fmt.Sprintf("failed to create cart_lines_added counter: %v", err))
	}
	return &Service{
		checker:    checker,
		mutator:    mutator,
		publisher:  publisher,
		linesAdded: linesAdded,
	}
}

// AddItem adds one unit of the variant to the cart. The mutation is issued
// only after the availability check permits it; a race between check and
// mutation is possible and resolved by the backend's own limits.
// Returns ErrOutOfStock when the cart already holds all available stock.
func (s *Service) AddItem(ctx context.Context, cartID, variantID string) error {
	if cartID == "" {
		return ErrMissingCart
	}
	if variantID == "" {
		return ErrMissingVariant
	}

	snapshot, err := s.checker.Check(ctx, availability.Request{CartID: cartID, VariantID: variantID})
	if err != nil {
		return fmt.Errorf("availability check failed: %w", err)
	}
	if !snapshot.CanAdd() {
		return ErrOutOfStock
	}

	if err := s.mutator.AddLine(ctx, cartID, variantID, 1); err != nil {
		return fmt.Errorf("failed to add line to cart %s: %w", cartID, err)
	}

	s.publish(ctx, events.CartLineAddedEvent{
		CartID:     cartID,
		VariantID:  variantID,
		Quantity:   1,
		OccurredAt: time.Now().UTC(),
	})
	s.linesAdded.Add(ctx, 1)

	return nil
}

// SetItemQuantity sets a cart line to an absolute quantity. Zero removes the
// line instead of running a quantity check. Returns ErrOutOfStock when the
// requested quantity exceeds the available stock.
func (s *Service) SetItemQuantity(ctx context.Context, cartID, lineID, variantID string, quantity int64) error {
	if cartID == "" {
		return ErrMissingCart
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, cartID, lineID)
	}

	snapshot, err := s.checker.Check(ctx, availability.Request{CartID: cartID, VariantID: variantID})
	if err != nil {
		return fmt.Errorf("availability check failed: %w", err)
	}
	if !snapshot.CanSetQuantity(quantity) {
		return ErrOutOfStock
	}

	if err := s.mutator.UpdateLine(ctx, cartID, lineID, quantity); err != nil {
		return fmt.Errorf("failed to update line %s in cart %s: %w", lineID, cartID, err)
	}

	s.publish(ctx, events.CartLineUpdatedEvent{
		CartID:     cartID,
		LineID:     lineID,
		Quantity:   quantity,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// RemoveItem deletes a cart line. No availability check applies to removals.
func (s *Service) RemoveItem(ctx context.Context, cartID, lineID string) error {
	if cartID == "" {
		return ErrMissingCart
	}

	if err := s.mutator.DeleteLine(ctx, cartID, lineID); err != nil {
		return fmt.Errorf("failed to delete line %s from cart %s: %w", lineID, cartID, err)
	}

	s.publish(ctx, events.CartLineRemovedEvent{
		CartID:     cartID,
		LineID:     lineID,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// publish emits a cart event. Publishing is best effort: failures are logged
// and never fail the mutation that already succeeded.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish cart event", "subject", event.Subject(), "error", err)
	}
}
