package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePassword(t *testing.T) {
	t.Run("contains_all_character_classes", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			pw := GeneratePassword(12)
			assert.Len(t, pw, 12)
			assert.True(t, strings.ContainsAny(pw, passwordLower), "missing lowercase: %s", pw)
			assert.True(t, strings.ContainsAny(pw, passwordUpper), "missing uppercase: %s", pw)
			assert.True(t, strings.ContainsAny(pw, passwordDigits), "missing digit: %s", pw)
			assert.True(t, strings.ContainsAny(pw, passwordSymbols), "missing symbol: %s", pw)
		}
	})

	t.Run("short_lengths_raised_to_minimum", func(t *testing.T) {
		assert.Len(t, GeneratePassword(3), MinPasswordLength)
	})

	t.Run("successive_passwords_differ", func(t *testing.T) {
		assert.NotEqual(t, GeneratePassword(16), GeneratePassword(16))
	})
}

func TestRandomSuffix(t *testing.T) {
	s := RandomSuffix(10)
	assert.Len(t, s, 10)
	for _, r := range s {
		assert.Contains(t, lowerAlnum, string(r))
	}
	assert.NotEqual(t, RandomSuffix(10), RandomSuffix(10))
}
