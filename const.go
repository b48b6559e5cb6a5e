package levelbook

import "math"

const (
	// Version is the current version of the level book
	Version = "v1.0.0"

	// MinPrice is the floor of bid-side reference prices: no trade yet, and absorbing under max.
	MinPrice uint64 = 0

	// MaxPrice is the ceiling of ask-side reference prices: no trade yet, and absorbing under min.
	MaxPrice uint64 = math.MaxUint64
)
