package service

import (
	"sync"
	"time"

	"misfit-alliance/internal/domain"

	"github.com/jonboulle/clockwork"
)

// Draft is a recognized match waiting for the coach to confirm or cancel it.
type Draft struct {
	ID          string                  `json:"id"`
	Recognition domain.MatchRecognition `json:"recognition"`
	CreatedAt   time.Time               `json:"createdAt"`
	ExpiresAt   time.Time               `json:"expiresAt"`
}

// DraftStore holds unconfirmed matches in memory. Nothing in a draft touches
// league state, so losing them on restart only costs a re-upload.
type DraftStore struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	ttl    time.Duration
	drafts map[string]Draft
}

func NewDraftStore(clock clockwork.Clock, ttl time.Duration) *DraftStore {
	return &DraftStore{
		clock:  clock,
		ttl:    ttl,
		drafts: make(map[string]Draft),
	}
}

func (s *DraftStore) Put(id string, rec domain.MatchRecognition) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	now := s.clock.Now()
	d := Draft{ID: id, Recognition: rec, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	s.drafts[id] = d
	return d
}

func (s *DraftStore) Get(id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok {
		return Draft{}, domain.ErrDraftNotFound
	}
	if !s.clock.Now().Before(d.ExpiresAt) {
		delete(s.drafts, id)
		return Draft{}, domain.ErrDraftNotFound
	}
	return d, nil
}

// Delete reports whether a live draft was removed.
func (s *DraftStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	delete(s.drafts, id)
	return ok && s.clock.Now().Before(d.ExpiresAt)
}

func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	return len(s.drafts)
}

func (s *DraftStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.drafts)
}

func (s *DraftStore) evictLocked() {
	now := s.clock.Now()
	for id, d := range s.drafts {
		if !now.Before(d.ExpiresAt) {
			delete(s.drafts, id)
		}
	}
}
