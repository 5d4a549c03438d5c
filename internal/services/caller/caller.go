// Package caller draws the next number in a broadcast round.
package caller

import (
	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
)

// Caller draws uniformly from the numbers not yet called
type Caller struct {
	random random.Random
}

// New creates a new Caller
func New(rnd random.Random) *Caller {
	return &Caller{random: rnd}
}

// Next returns a number in [1, poolMax] that is not in called.
// Returns model.ErrPoolExhausted once every number has been called.
func (c *Caller) Next(called []int, poolMax int) (int, error) {
	seen := make(map[int]bool, len(called))
	for _, n := range called {
		if n >= 1 && n <= poolMax {
			seen[n] = true
		}
	}

	remaining := poolMax - len(seen)
	if remaining <= 0 {
		return 0, model.ErrPoolExhausted
	}

	k := c.random.Intn(remaining)
	for n := 1; n <= poolMax; n++ {
		if seen[n] {
			continue
		}
		if k == 0 {
			return n, nil
		}
		k--
	}
	return 0, model.ErrPoolExhausted
}
