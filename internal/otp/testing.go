package otp

import "sync"

// FixedGenerator hands out the given values in order and then repeats the last one.
// Test helper for deterministic codes.
type FixedGenerator struct {
	mu     sync.Mutex
	Values []string
	next   int
}

// Generate returns the next configured value.
func (g *FixedGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Values) == 0 {
		return "000000", nil
	}
	v := g.Values[g.next]
	if g.next < len(g.Values)-1 {
		g.next++
	}
	return v, nil
}
