package pricing

import (
	"errors"
	"fmt"
)

// Kind classifies a ValidationError
type Kind string

const (
	MissingRequiredGroup     Kind = "missing_required_group"
	GroupSelectionCapReached Kind = "group_selection_cap_reached"
	InvalidTotal             Kind = "invalid_total"
	InvalidPrice             Kind = "invalid_price"
	InvalidQuantity          Kind = "invalid_quantity"
)

// ValidationError is a user-facing failure that blocks a single action
// (adding a line to the cart or submitting an order).
type ValidationError struct {
	Kind  Kind
	Group string
	Max   int
	Item  string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingRequiredGroup:
		return fmt.Sprintf("Please make a selection for %s", e.Group)
	case GroupSelectionCapReached:
		return fmt.Sprintf("You can select up to %d for %s", e.Max, e.Group)
	case InvalidTotal:
		return "Order total must be greater than zero"
	case InvalidPrice:
		if e.Item != "" {
			return fmt.Sprintf("%s has an invalid price", e.Item)
		}
		return "Invalid price"
	case InvalidQuantity:
		if e.Max > 0 {
			return fmt.Sprintf("Quantity must be between 1 and %d", e.Max)
		}
		return "Quantity must be at least 1"
	default:
		return string(e.Kind)
	}
}

// Is matches any *ValidationError of the same kind, so callers can write
// errors.Is(err, &ValidationError{Kind: MissingRequiredGroup}).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of a ValidationError in err's chain
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
