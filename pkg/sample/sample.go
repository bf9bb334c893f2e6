// Package sample selects a reproducible random subset of object keys.
package sample

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidArgument is returned for a fraction outside [0, 1].
var ErrInvalidArgument = errors.New("invalid argument")

// Size returns the number of keys a fraction selects out of n.
func Size(n int, fraction float64) (int, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return 0, fmt.Errorf("%w: fraction %v is not in [0, 1]", ErrInvalidArgument, fraction)
	}
	return int(math.Floor(fraction * float64(n))), nil
}

// Fraction picks floor(fraction * n) distinct keys without replacement,
// where n is the number of distinct keys.
//
// The generator is created from seed for every call, so equal arguments
// always produce the same keys in the same order.  `keys` is not modified.
func Fraction(keys []string, fraction float64, seed int64) ([]string, error) {
	pool := distinct(keys)
	size, err := Size(len(pool), fraction)
	if err != nil {
		return nil, err
	}

	// partial Fisher-Yates: pool[:size] becomes the sample.
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < size; i++ {
		j := i + r.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:size:size], nil
}

func distinct(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	pool := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		pool = append(pool, k)
	}
	return pool
}
