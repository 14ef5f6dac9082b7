package testfixtures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// idNamespace seeds the name-based UUIDs handed out by IDGenerator.
var idNamespace = uuid.MustParse("6f0b1f9e-8a53-4c8e-9a51-5c3b8e0f2d11")

// IDGenerator produces deterministic identifiers for tests. Services take
// UUIDs; the same counter backs the string and UUID forms.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator that yields identifiers with the given
// prefix. When prefix is empty, "id" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextUUID returns the name-based UUID of the next identifier. Two
// generators with the same prefix yield the same sequence.
func (g *IDGenerator) NextUUID() uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(g.Next()))
}

// UUIDFunc exposes NextUUID for injection into services.
func (g *IDGenerator) UUIDFunc() func() uuid.UUID {
	if g == nil {
		return uuid.New
	}
	return g.NextUUID
}

// UUIDFor returns the UUID the generator yields for the n-th identifier
// with prefix, so tests can predict IDs without consuming them.
func UUIDFor(prefix string, n uint64) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s-%d", prefix, n)))
}

// SetCounter overrides the internal counter, enabling deterministic resets.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}
