package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// Generator produces code values.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator draws CodeLength digit codes uniformly from [100000, 999999] using
// crypto/rand. Every generated value passes ValidFormat.
type RandomGenerator struct{}

// Generate returns a fixed-width numeric code.
func (RandomGenerator) Generate() (string, error) {
	low := int64(1)
	for i := 1; i < CodeLength; i++ {
		low *= 10
	}
	n, err := rand.Int(rand.Reader, big.NewInt(9*low))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(low+n.Int64(), 10), nil
}

// ValidFormat reports whether value has the shape of an issued code.
func ValidFormat(value string) bool {
	if len(value) != CodeLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
