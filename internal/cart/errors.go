package cart

import "errors"

var ErrOutOfStock = errors.New("out of stock")
var ErrMissingCart = errors.New("cart id is required")
var ErrMissingVariant = errors.New("variant id is required")
