package messaging

const (
	CartLineAddedSubject   = "storefront.cart.line_added"
	CartLineUpdatedSubject = "storefront.cart.line_updated"
	CartLineRemovedSubject = "storefront.cart.line_removed"
)
