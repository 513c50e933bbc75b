package bot

import "math/rand/v2"

//go:generate mockgen -destination=mocks/mock_random.go -package=mocks ctchen222/tictactoe/internal/bot RandomSource

// RandomSource picks among N options for the Easy and Medium policies.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// globalSource draws from the math/rand/v2 top-level functions, which are
// safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource returns the unseeded source used when none is injected.
func DefaultSource() RandomSource {
	return globalSource{}
}

// NewSeededSource returns a reproducible source. It is not safe for
// concurrent use.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func pick(src RandomSource, options []int) int {
	return options[src.IntN(len(options))]
}
