package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLower   = "abcdefghijklmnopqrstuvwxyz"
	passwordUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits  = "0123456789"
	passwordSymbols = "!@#$%^&*"

	// MinPasswordLength is the shortest password accepted by registration settings
	MinPasswordLength = 8

	// DefaultPasswordLength is used for generated account passwords
	DefaultPasswordLength = 12
)

// GeneratePassword returns a random password of the given length containing
// at least one character from each class. Lengths below MinPasswordLength are
// raised to it.
func GeneratePassword(length int) string {
	if length < MinPasswordLength {
		length = MinPasswordLength
	}

	all := passwordLower + passwordUpper + passwordDigits + passwordSymbols

	b := make([]byte, length)
	b[0] = randomByte(passwordLower)
	b[1] = randomByte(passwordUpper)
	b[2] = randomByte(passwordDigits)
	b[3] = randomByte(passwordSymbols)
	for i := 4; i < length; i++ {
		b[i] = randomByte(all)
	}

	// Fisher-Yates so the guaranteed classes are not always at the front
	for i := len(b) - 1; i > 0; i-- {
		j := randomIndex(i + 1)
		b[i], b[j] = b[j], b[i]
	}

	return string(b)
}

func randomByte(charset string) byte {
	return charset[randomIndex(len(charset))]
}

func randomIndex(n int) int {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("random source unavailable")
	}
	return int(idx.Int64())
}
