package random

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Shuffle performs a cryptographically secure shuffle of the slice.
func Shuffle[T any](slice []T) error {
	return ShuffleWith(rand.Reader, slice)
}

// ShuffleWith shuffles the slice using the given entropy source.
func ShuffleWith[T any](src io.Reader, slice []T) error {
	for i := len(slice) - 1; i > 0; i-- {
		jBig, err := rand.Int(src, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

// Pick returns up to n elements chosen uniformly without replacement.
// The input slice is left untouched.
func Pick[T any](src io.Reader, items []T, n int) ([]T, error) {
	if n <= 0 || len(items) == 0 {
		return []T{}, nil
	}
	pool := make([]T, len(items))
	copy(pool, items)
	if err := ShuffleWith(src, pool); err != nil {
		return nil, err
	}
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n], nil
}
