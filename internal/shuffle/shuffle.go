// Package shuffle produces reproducible orderings from a string seed.
package shuffle

import "unicode/utf16"

// Linear-congruential generator constants. Changing them changes every
// deck order ever served.
const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280
)

// Seed sums the UTF-16 code units of key.
func Seed(key string) int64 {
	var seed int64
	for _, unit := range utf16.Encode([]rune(key)) {
		seed += int64(unit)
	}
	return seed
}

// Shuffle returns a permutation of items determined entirely by seedKey.
// The input slice is not modified.
func Shuffle[T any](items []T, seedKey string) []T {
	out := make([]T, len(items))
	copy(out, items)

	seed := Seed(seedKey)
	for i := len(out) - 1; i > 0; i-- {
		seed = (seed*multiplier + increment) % modulus
		j := int((float64(seed) / modulus) * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
