package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidInput marks failures caused by the data handed to an operation:
	// empty tables, missing or null key fields, duplicate keys in strict mode.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration marks failures caused by run parameters.
	ErrConfiguration = errors.New("configuration error")
)

// Fraction is an exact rational share, used to keep hash bucketing free of
// floating point rounding.
type Fraction struct {
	Numerator   int `mapstructure:"numerator" json:"numerator"`
	Denominator int `mapstructure:"denominator" json:"denominator"`
}

// DefaultTrainFraction puts three quarters of the rows into the training set.
var DefaultTrainFraction = Fraction{Numerator: 3, Denominator: 4}

func (f Fraction) Validate() error {
	if f.Denominator <= 0 {
		return fmt.Errorf("%w: fraction denominator must be positive, got %d", ErrConfiguration, f.Denominator)
	}
	if f.Numerator <= 0 || f.Numerator >= f.Denominator {
		return fmt.Errorf("%w: fraction %s must lie strictly between 0 and 1", ErrConfiguration, f)
	}
	return nil
}

// Contains reports whether bucket falls in the share described by f.
func (f Fraction) Contains(bucket int) bool {
	return bucket < f.Numerator
}

func (f Fraction) Float() float64 {
	if f.Denominator == 0 {
		return 0
	}
	return float64(f.Numerator) / float64(f.Denominator)
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// ParseFraction reads "n/d". The result is validated.
func ParseFraction(s string) (Fraction, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Fraction{}, fmt.Errorf("%w: fraction %q is not of the form n/d", ErrConfiguration, s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return Fraction{}, fmt.Errorf("%w: fraction numerator: %v", ErrConfiguration, err)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return Fraction{}, fmt.Errorf("%w: fraction denominator: %v", ErrConfiguration, err)
	}
	f := Fraction{Numerator: n, Denominator: d}
	if err := f.Validate(); err != nil {
		return Fraction{}, err
	}
	return f, nil
}
