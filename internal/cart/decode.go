package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrMalformedCart = errors.New("malformed cart")
	ErrInvalidLine   = errors.New("invalid cart line")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Rejection explains why a persisted line was dropped
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Decode parses a cart persisted by the client. It accepts either a bare JSON
// array of lines or an object with a "lines" array. Entries that cannot be
// trusted are dropped and reported; recoverable ones are coerced:
//   - a missing line id gets a fresh one
//   - non-positive selection quantities are pruned
//   - a zero TotalPrice is re-priced from the line's own snapshot
func Decode(data []byte) (*Cart, []Rejection, error) {
	raw, err := splitLines(data)
	if err != nil {
		return nil, nil, err
	}

	c := New()
	var rejected []Rejection
	for i, entry := range raw {
		line, err := decodeLine(entry)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		c.lines = append(c.lines, line)
	}
	return c, rejected, nil
}

func splitLines(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var raw []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
		}
		return raw, nil
	}

	var wrapped struct {
		Lines []json.RawMessage `json:"lines"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	return wrapped.Lines, nil
}

func decodeLine(entry json.RawMessage) (models.CartLine, error) {
	var line models.CartLine
	if err := json.Unmarshal(entry, &line); err != nil {
		return line, fmt.Errorf("%w: %v", ErrInvalidLine, err)
	}

	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	line.Modifiers = pruneModifiers(line.Modifiers)
	line.Upsells = pruneUpsells(line.Upsells)

	if err := ValidateLine(line); err != nil {
		return line, err
	}

	if line.TotalPrice.IsZero() {
		price := pricing.PriceLine(line.Item, line.Quantity, line.Modifiers, line.Upsells)
		line.UnitPrice = price.UnitWithUpsells
		line.TotalPrice = price.Total
	}
	return line, nil
}

// ValidateLine checks the structural, price and selection invariants of a
// line that arrived from outside the process.
func ValidateLine(line models.CartLine) error {
	if err := validate.Struct(line); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.StructField() == "Quantity" {
				return &pricing.ValidationError{Kind: pricing.InvalidQuantity}
			}
			return fmt.Errorf("%w: %s failed %s", ErrInvalidLine, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidLine, err)
	}
	if err := pricing.ValidatePrices(line.Item); err != nil {
		return err
	}
	if err := ValidateSelections(line.Item, line.Modifiers, line.Upsells); err != nil {
		return err
	}
	if line.TotalPrice.IsNegative() || line.UnitPrice.IsNegative() {
		return &pricing.ValidationError{Kind: pricing.InvalidPrice, Item: line.Item.Name}
	}
	return nil
}

func pruneModifiers(sel models.ModifierSelection) models.ModifierSelection {
	if len(sel) == 0 {
		return nil
	}
	out := make(models.ModifierSelection, len(sel))
	for g, opts := range sel {
		for o, q := range opts {
			if q <= 0 {
				continue
			}
			if out[g] == nil {
				out[g] = make(map[string]int)
			}
			out[g][o] = q
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func pruneUpsells(sel models.UpsellSelection) models.UpsellSelection {
	out := make(models.UpsellSelection, len(sel))
	for id, q := range sel {
		if q > 0 {
			out[id] = q
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
