package loadgen

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// Targets synthesizes request URLs for a run. Each call to Next picks an
// evidence folder uniformly at random between 00 and FF, so repeats within
// and across batches are expected; the access pattern deliberately mimics
// clients hitting a shared folder set rather than sweeping it.
type Targets struct {
	base string
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewTargets creates a target generator rooted at baseURL. Trailing slashes
// on the base are ignored.
func NewTargets(baseURL string) *Targets {
	return &Targets{
		base: strings.TrimRight(baseURL, "/"),
		rng:  rand.New(rand.NewSource(rand.Int63())),
	}
}

// Next returns the URL of a randomly chosen evidence folder.
// Thread-safe for concurrent callers.
func (t *Targets) Next() string {
	t.mu.Lock()
	n := t.rng.Intn(256)
	t.mu.Unlock()

	return fmt.Sprintf("%s/evidence/%02X", t.base, n)
}
