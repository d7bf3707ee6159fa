package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// ErrInvalidLength indicates a non-positive code length was requested.
//
// This is a programming error, not user input: callers must never coerce it
// into a default.
var ErrInvalidLength = errors.New("otp: code length must be positive")

// Generator defines the contract for producing one-time passcodes.
type Generator interface {
	// Generate returns a code of exactly length digits, leading zeros
	// preserved. It fails with ErrInvalidLength when length <= 0.
	Generate(length int) (string, error)
}

// DigitGenerator implements Generator using crypto/rand.
//
// Each digit is drawn independently and uniformly from 0-9, so a 6-digit code
// carries the full 10^6 space regardless of position.
type DigitGenerator struct{}

// NewDigitGenerator returns a crypto/rand backed Generator.
func NewDigitGenerator() *DigitGenerator {
	return &DigitGenerator{}
}

// Generate returns length uniform random digits as a fixed-width string.
func (*DigitGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}

	// Rejection sampling: a byte has 256 values, 250 is the largest multiple
	// of 10, so values >= 250 would bias the low digits and are redrawn.
	const limit = 250

	out := make([]byte, 0, length)
	buf := make([]byte, length)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("otp: read random bytes: %w", err)
		}

		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, '0'+b%10)
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
