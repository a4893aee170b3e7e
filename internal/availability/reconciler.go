// Package availability reconciles a variant's live inventory against the
// quantity already committed in a shopping cart.
package availability

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// Unlimited marks a stock quantity with no ceiling, used for variants that do
// not track inventory.
const Unlimited = int64(math.MaxInt64)

// Snapshot is the availability of one (variant, cart) pair at a point in
// time. It is recomputed immediately before every cart mutation and never
// persisted.
type Snapshot struct {
	InCartQuantity  int64 `json:"in_cart_quantity"`
	InStockQuantity int64 `json:"in_stock_quantity"`
}

// CanAdd reports whether one more unit of the variant fits in the cart.
func (s Snapshot) CanAdd() bool {
	return s.InCartQuantity < s.InStockQuantity
}

// CanSetQuantity reports whether the cart line may be set to an absolute
// quantity. Zero is always permitted: it is a removal, not a quantity check.
func (s Snapshot) CanSetQuantity(quantity int64) bool {
	return quantity == 0 || quantity <= s.InStockQuantity
}

// VariantInventory is the live inventory state of a variant as reported by
// the commerce backend. A nil InventoryQuantity means no numeric quantity is
// reported.
type VariantInventory struct {
	ManageInventory   bool
	InventoryQuantity *int64
}

// CartLine is one line item of a cart.
type CartLine struct {
	ID        string `json:"id"`
	VariantID string `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

// VariantLookup fetches the inventory state of a variant.
// Returns nil when the variant does not exist.
type VariantLookup interface {
	VariantInventory(ctx context.Context, variantID string) (*VariantInventory, error)
}

// CartLookup fetches the line items of a cart.
type CartLookup interface {
	CartLines(ctx context.Context, cartID string) ([]CartLine, error)
}

// Request identifies the (variant, cart) pair to check. ProductID is carried
// for caller bookkeeping only and does not influence the computation.
type Request struct {
	VariantID string
	CartID    string
	ProductID string
}

// Reconciler computes availability snapshots from live backend state.
type Reconciler struct {
	variants VariantLookup
	carts    CartLookup
}

func NewReconciler(variants VariantLookup, carts CartLookup) *Reconciler {
	return &Reconciler{
		variants: variants,
		carts:    carts,
	}
}

// Check computes the availability snapshot for the request. A missing variant
// ID yields an unavailable snapshot rather than an error; callers treat it as
// "select an option" state. The inventory and cart lookups do not depend on
// each other and run concurrently; a failure in either propagates to the
// caller, who owns the retry policy.
func (r *Reconciler) Check(ctx context.Context, req Request) (Snapshot, error) {
	if req.VariantID == "" {
		return Snapshot{}, nil
	}

	var (
		inventory *VariantInventory
		lines     []CartLine
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inventory, err = r.variants.VariantInventory(gCtx, req.VariantID)
		return err
	})
	if req.CartID != "" {
		g.Go(func() error {
			var err error
			lines, err = r.carts.CartLines(gCtx, req.CartID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		InCartQuantity:  inCartQuantity(lines, req.VariantID),
		InStockQuantity: inStockQuantity(inventory),
	}, nil
}

// inStockQuantity derives the stock ceiling from the inventory state.
// Variants that do not manage inventory, or report no numeric quantity, have
// no ceiling. Unknown variants have zero stock.
func inStockQuantity(inventory *VariantInventory) int64 {
	if inventory == nil {
		return 0
	}
	if !inventory.ManageInventory || inventory.InventoryQuantity == nil {
		return Unlimited
	}
	if q := *inventory.InventoryQuantity; q > 0 {
		return q
	}
	return 0
}

// inCartQuantity returns the quantity of the first line referencing the
// variant. Carts hold at most one line per variant; should the backend ever
// produce more, only the first match counts.
func inCartQuantity(lines []CartLine, variantID string) int64 {
	for _, line := range lines {
		if line.VariantID == variantID {
			return line.Quantity
		}
	}
	return 0
}
