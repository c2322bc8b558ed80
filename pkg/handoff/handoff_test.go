package handoff

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blisstech/pharmacy-api/internal/model"
)

func TestStageAndClaim(t *testing.T) {
	store := NewStore(DefaultTTL)

	cmd := &model.FillCommand{
		PatientID:    uuid.New(),
		MedicationID: uuid.New(),
		Quantity:     30,
	}
	ticket := store.Stage(cmd)
	assert.Equal(t, ticket, cmd.Ticket)

	claimed, ok := store.Claim(ticket)
	require.True(t, ok)
	assert.Equal(t, cmd, claimed)
}

func TestClaimIsSingleUse(t *testing.T) {
	store := NewStore(DefaultTTL)
	ticket := store.Stage(&model.FillCommand{Quantity: 10})

	_, ok := store.Claim(ticket)
	require.True(t, ok)

	_, ok = store.Claim(ticket)
	assert.False(t, ok, "second claim of the same ticket must fail")
}

func TestClaimUnknownTicket(t *testing.T) {
	store := NewStore(DefaultTTL)

	_, ok := store.Claim(uuid.New())
	assert.False(t, ok)
}

func TestStagedCommandExpires(t *testing.T) {
	store := NewStore(20 * time.Millisecond)
	ticket := store.Stage(&model.FillCommand{Quantity: 10})

	time.Sleep(50 * time.Millisecond)

	_, ok := store.Claim(ticket)
	assert.False(t, ok)
}

func TestConcurrentClaimsOnlyOneWins(t *testing.T) {
	store := NewStore(DefaultTTL)
	ticket := store.Stage(&model.FillCommand{Quantity: 10})

	const claimers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.Claim(ticket); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}
