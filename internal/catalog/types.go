// Package catalog contains the product variant model and the derived
// combination projection used for option selection and availability display.
package catalog

// Money is a calculated price amount with its currency code.
type Money struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currency_code"`
}

// OptionValue is one (option title, option value) pair selected by a variant.
type OptionValue struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// ProductOption is a named axis of variation declared at the product level.
type ProductOption struct {
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

// Variant is a purchasable configuration of a product. It is owned by the
// commerce backend, fetched fresh per request and never mutated here.
// A nil InventoryQuantity means the backend reports no numeric quantity.
type Variant struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Options           []OptionValue `json:"options"`
	ManageInventory   bool          `json:"manage_inventory"`
	InventoryQuantity *int64        `json:"inventory_quantity,omitempty"`
	CalculatedPrice   *Money        `json:"calculated_price,omitempty"`
}

// Product is the source data for combination resolution.
type Product struct {
	ID       string          `json:"id"`
	Handle   string          `json:"handle"`
	Title    string          `json:"title"`
	Options  []ProductOption `json:"options"`
	Variants []Variant       `json:"variants"`
}

// Combination is the read-only projection of a variant used for selection and
// availability display. Options holds one entry per normalized option title
// with the percent-decoded, lower-cased value.
type Combination struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Price            *Money            `json:"price,omitempty"`
	AvailableForSale bool              `json:"available_for_sale"`
	Options          map[string]string `json:"options"`
}
