// Package handoff carries a staged fill command from the dashboard to the
// fulfillment form. A command is claimed exactly once: claiming clears it,
// and unclaimed commands expire on their own.
package handoff

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/blisstech/pharmacy-api/internal/model"
)

const (
	// DefaultTTL bounds how long a staged command survives unclaimed.
	DefaultTTL = 5 * time.Minute

	cleanupInterval = 10 * time.Minute
)

type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: cache.New(ttl, cleanupInterval)}
}

// Stage stores the command and returns its one-time ticket.
func (s *Store) Stage(cmd *model.FillCommand) uuid.UUID {
	ticket := uuid.New()
	cmd.Ticket = ticket
	s.cache.SetDefault(ticket.String(), cmd)
	return ticket
}

// Claim consumes the command for a ticket. The second return is false when
// the ticket is unknown, expired or already claimed.
func (s *Store) Claim(ticket uuid.UUID) (*model.FillCommand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(ticket.String())
	if !ok {
		return nil, false
	}
	s.cache.Delete(ticket.String())
	return v.(*model.FillCommand), true
}
