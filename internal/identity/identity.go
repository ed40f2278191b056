// Package identity generates and normalises the short codes that key a list
// in local storage and that people read out or type on another device.
package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	Alphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultLength = 5
	MinLength     = 4
	MaxLength     = 12
)

var (
	ErrEmptyCode   = errors.New("code is empty")
	ErrInvalidCode = errors.New("code may only contain letters A-Z and digits 0-9")
)

// Generate returns a code of n characters drawn uniformly from Alphabet.
// Codes are not checked for collisions; 36^5 keys is plenty for one device.
func Generate(n int) (string, error) {
	return GenerateFrom(rand.Reader, n)
}

// GenerateFrom is Generate with an explicit entropy source.
func GenerateFrom(r io.Reader, n int) (string, error) {
	if n < MinLength || n > MaxLength {
		return "", fmt.Errorf("code length %d out of range [%d,%d]", n, MinLength, MaxLength)
	}
	max := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(r, max)
		if err != nil {
			return "", fmt.Errorf("random: %w", err)
		}
		b.WriteByte(Alphabet[v.Int64()])
	}
	return b.String(), nil
}

// Normalize trims and upper-cases user input so " ab12" and "AB12" are the same list.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrEmptyCode
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
		}
	}
	return code, nil
}
