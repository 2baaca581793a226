package ratio

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidArgument is returned when a work:rest ratio is not a positive,
// finite number. The timer is left unchanged whenever it is returned.
var ErrInvalidArgument = errors.New("invalid argument")

// ParseRatio converts user input such as "3" or "1.5" into a ratio.
func ParseRatio(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: ratio %q is not a number", ErrInvalidArgument, s)
	}
	if err := ValidateRatio(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidateRatio returns ErrInvalidArgument unless r is positive and finite.
func ValidateRatio(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: ratio %v is not finite", ErrInvalidArgument, r)
	}
	if r <= 0 {
		return fmt.Errorf("%w: ratio %v must be greater than zero", ErrInvalidArgument, r)
	}
	return nil
}
