package amount

import "errors"

var (
	// ErrNegative indicates a negative quantity where only non-negative values are representable.
	ErrNegative = errors.New("amount: negative value")

	// ErrPrecision indicates more fractional digits than the base unit supports.
	ErrPrecision = errors.New("amount: too many decimal places")

	// ErrOverflow indicates the value does not fit in 64 bits of base units.
	ErrOverflow = errors.New("amount: overflow")

	// ErrInvalid indicates the text is not a decimal number.
	ErrInvalid = errors.New("amount: invalid decimal")
)
