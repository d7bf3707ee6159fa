package otp

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitGenerator_Generate(t *testing.T) {
	gen := NewDigitGenerator()
	onlyDigits := regexp.MustCompile(`^[0-9]+$`)

	for _, length := range []int{1, 4, 6, 8, 32} {
		code, err := gen.Generate(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
		assert.Regexp(t, onlyDigits, code)
	}
}

func TestDigitGenerator_GenerateInvalidLength(t *testing.T) {
	gen := NewDigitGenerator()

	for _, length := range []int{0, -1, -6} {
		code, err := gen.Generate(length)
		assert.Empty(t, code)
		assert.True(t, errors.Is(err, ErrInvalidLength))
	}
}

func TestDigitGenerator_LeadingZerosPreserved(t *testing.T) {
	gen := NewDigitGenerator()

	// With 200 draws of 6 digits the odds of never seeing a leading zero are
	// (9/10)^200, effectively zero. A flake here means the generator is biased.
	seen := false
	for range 200 {
		code, err := gen.Generate(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		if code[0] == '0' {
			seen = true
			break
		}
	}
	assert.True(t, seen, "expected at least one code with a leading zero")
}

func TestDigitGenerator_Distribution(t *testing.T) {
	gen := NewDigitGenerator()

	counts := make(map[byte]int)
	for range 500 {
		code, err := gen.Generate(6)
		require.NoError(t, err)
		for i := range len(code) {
			counts[code[i]]++
		}
	}

	// Every digit should show up over 3000 samples.
	for d := byte('0'); d <= '9'; d++ {
		assert.Positive(t, counts[d], "digit %c never generated", d)
	}
}
