// Package generator produces random passwords from selectable character
// classes. All randomness comes from crypto/rand: a predictable generator
// would defeat the point of generating passwords at all.
package generator

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	// MinLength and MaxLength bound the accepted password length.
	MinLength = 6
	MaxLength = 64

	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{}|;:,.<>?/~"
)

// ErrInvalidLength is returned when length is outside [MinLength, MaxLength].
var ErrInvalidLength = errors.New("length must be an integer between 6 and 64")

// ErrNoClasses is returned when no character class is selected.
var ErrNoClasses = errors.New("at least one character type is required")

// Generate returns a random password of exactly length characters drawn
// from the selected classes. Each selected class is guaranteed at least one
// character; the result is shuffled so the guaranteed characters are not
// biased toward the front.
func Generate(length int, upper, lower, digits, symbols bool) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", ErrInvalidLength
	}

	var pools []string
	if upper {
		pools = append(pools, upperChars)
	}
	if lower {
		pools = append(pools, lowerChars)
	}
	if digits {
		pools = append(pools, digitChars)
	}
	if symbols {
		pools = append(pools, symbolChars)
	}
	if len(pools) == 0 {
		return "", ErrNoClasses
	}

	all := strings.Join(pools, "")
	out := make([]byte, 0, length)

	// One character from every requested class first.
	for _, pool := range pools {
		c, err := pick(pool)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	// Fill the remainder from the union alphabet.
	for len(out) < length {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// Fisher-Yates shuffle.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}

	return string(out), nil
}

func pick(pool string) (byte, error) {
	i, err := randInt(len(pool))
	if err != nil {
		return 0, err
	}
	return pool[i], nil
}

// randInt returns a uniform random int in [0, n) from crypto/rand.
func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
