package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator mints opaque record IDs. Intervals, periods and timeline events
// all use these rather than database sequences so records keep their identity
// across backends.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(raw), nil
}
