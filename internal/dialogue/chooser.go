package dialogue

import (
	"math/rand"
	"sync"
)

// Chooser picks an index in [0, n). n is always positive.
type Chooser interface {
	Intn(n int) int
}

// FirstChooser always picks the first candidate.
type FirstChooser struct{}

func (FirstChooser) Intn(int) int { return 0 }

// RandomChooser draws uniformly from a seeded source. It is safe for
// concurrent use so one chooser can serve several engines.
type RandomChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomChooser returns a chooser whose sequence is fixed by seed.
func NewRandomChooser(seed int64) *RandomChooser {
	return &RandomChooser{rng: rand.New(rand.NewSource(seed))}
}

func (c *RandomChooser) Intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(n)
}
