package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generator hands out identifiers for new records.
type Generator interface {
	NewID() string
}

// NanoID is used for posts, replies, drafts and match summaries.
type NanoID struct{}

func (NanoID) NewID() string {
	id, err := gonanoid.New()
	if err != nil {
		// nanoid only fails when the system entropy source does
		panic(fmt.Sprintf("failed to generate nanoid: %v", err))
	}
	return id
}

// UUID is used for player identities.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.New().String()
}

// Sequence is a deterministic generator for tests: prefix-1, prefix-2, ...
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}
