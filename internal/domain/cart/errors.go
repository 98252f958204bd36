// internal/domain/cart/errors.go
package cart

import "errors"

// Error kinds as stable strings (logs, metrics labels, CLI output).
const (
	KindInvalidInput    = "invalid_input"
	KindProductNotFound = "product_not_found"
	KindItemNotFound    = "item_not_found"
	KindInternal        = "internal"
)

// ErrorKind classifies err into one of the Kind* constants.
// nil returns "".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrProductNotFound):
		return KindProductNotFound
	case errors.Is(err, ErrItemNotFound):
		return KindItemNotFound
	default:
		return KindInternal
	}
}
