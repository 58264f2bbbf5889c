// Package utils provides small shared helpers for the KAM service.
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const lowerAlnum = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewID returns a new random UUID string
func NewID() string {
	return uuid.NewString()
}

// RandomSuffix returns n random lowercase alphanumeric characters,
// suitable for disambiguating generated client names and mailbox prefixes.
func RandomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(lowerAlnum))))
		if err != nil {
			// crypto/rand only fails when the platform entropy source is broken
			panic(fmt.Sprintf("random source unavailable: %v", err))
		}
		b[i] = lowerAlnum[idx.Int64()]
	}
	return string(b)
}
