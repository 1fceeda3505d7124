package valueobjects

import (
	"errors"
	"math/big"
	"regexp"
)

// numeralPattern is a subset of the store's N grammar: optional sign, digits
// with an optional fraction, optional exponent. Bare ".5" and "5." are
// rejected.
var numeralPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?([eE][+-]?\d+)?$`)

// Numeral is a number carried as a string on the wire. Comparison is exact
// and numeric, never lexicographic: "9" is less than "10".
type Numeral struct {
	raw   string
	value *big.Rat
}

// ParseNumeral parses a string-encoded number. Surrounding whitespace is
// rejected: the value is sent to the store unchanged.
func ParseNumeral(s string) (Numeral, error) {
	if s == "" {
		return Numeral{}, errors.New("numeral cannot be empty")
	}
	if !numeralPattern.MatchString(s) {
		return Numeral{}, errors.New("numeral must be a decimal number")
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Numeral{}, errors.New("numeral out of range")
	}
	return Numeral{raw: s, value: r}, nil
}

// IsNumeral reports whether s parses as a Numeral
func IsNumeral(s string) bool {
	_, err := ParseNumeral(s)
	return err == nil
}

// String returns the numeral exactly as it was given
func (n Numeral) String() string {
	return n.raw
}

// Cmp compares n and other numerically, returning -1, 0 or +1.
// The zero Numeral compares as 0.
func (n Numeral) Cmp(other Numeral) int {
	return n.rat().Cmp(other.rat())
}

// GreaterThan reports whether n > other
func (n Numeral) GreaterThan(other Numeral) bool {
	return n.Cmp(other) > 0
}

func (n Numeral) rat() *big.Rat {
	if n.value == nil {
		return new(big.Rat)
	}
	return n.value
}
