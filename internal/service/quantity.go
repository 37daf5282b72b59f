package service

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// QuantityPolicy decides how fractional invoice quantities become whole units.
type QuantityPolicy string

const (
	QuantityReject QuantityPolicy = "reject"
	QuantityFloor  QuantityPolicy = "floor"
	QuantityCeil   QuantityPolicy = "ceil"
	QuantityHalfUp QuantityPolicy = "half_up"
)

var (
	ErrFractionalQuantity  = errors.New("fractional quantity")
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
)

func ParseQuantityPolicy(s string) (QuantityPolicy, error) {
	switch p := QuantityPolicy(s); p {
	case QuantityReject, QuantityFloor, QuantityCeil, QuantityHalfUp:
		return p, nil
	case "":
		return QuantityReject, nil
	}
	return "", fmt.Errorf("unknown quantity policy %q", s)
}

// Convert turns q into whole units. rounded reports whether q was fractional.
// Whole quantities such as 4.000 always convert exactly.
func (p QuantityPolicy) Convert(q decimal.Decimal) (units int, rounded bool, err error) {
	whole := q
	if !q.Equal(q.Truncate(0)) {
		rounded = true
		switch p {
		case QuantityFloor:
			whole = q.Floor()
		case QuantityCeil:
			whole = q.Ceil()
		case QuantityHalfUp:
			whole = q.Round(0)
		default:
			return 0, false, fmt.Errorf("%w: %s", ErrFractionalQuantity, q.String())
		}
	}
	if !whole.IsPositive() {
		return 0, rounded, fmt.Errorf("%w: %s", ErrNonPositiveQuantity, q.String())
	}
	if whole.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, rounded, fmt.Errorf("%w: %s is too large", ErrValidation, q.String())
	}
	return int(whole.IntPart()), rounded, nil
}

var groupedNumber = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseSheetStock reads a spreadsheet stock cell. An empty cell is zero.
// Grouped thousands such as 1,500 are accepted; anything that is not a
// whole number between 0 and MaxInt32 is an error.
func ParseSheetStock(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	digits := text
	if groupedNumber.MatchString(text) {
		digits = strings.ReplaceAll(text, ",", "")
	}
	q, err := decimal.NewFromString(digits)
	if err != nil {
		return 0, invalidf("stock %q is not a number", text)
	}
	switch {
	case q.IsNegative():
		return 0, invalidf("stock %q is negative", text)
	case !q.Equal(q.Truncate(0)):
		return 0, invalidf("stock %q is not a whole number", text)
	case q.GreaterThan(decimal.NewFromInt(math.MaxInt32)):
		return 0, invalidf("stock %q is too large", text)
	}
	return int(q.IntPart()), nil
}
