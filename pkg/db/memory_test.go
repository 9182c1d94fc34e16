package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/core/model"
)

func newSession(eventID int) *casting.Session {
	return casting.NewSession(eventID,
		[]model.Role{{ID: 1, Name: "Chevalier", Type: model.TypePlayer}},
		model.GroupParticipants([]model.Participant{
			{ID: 101, Name: "Alex", Type: model.TypePlayer},
			{ID: 102, Name: "Camille", Type: model.TypePlayer},
		}),
	)
}

func TestMemoryStore_LoadUnknownEvent(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.LoadSession(context.Background(), 1)

	assert.ErrorIs(t, err, casting.ErrNotFound)
}

func TestMemoryStore_LoadReturnsPrivateCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveSession(ctx, newSession(1)))

	loaded, err := store.LoadSession(ctx, 1)
	require.NoError(t, err)
	loaded.Assignments[casting.MainProposal][1] = 101

	reloaded, err := store.LoadSession(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Assignments[casting.MainProposal])
}

func TestMemoryStore_UpdateSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveSession(ctx, newSession(1)))

	err := store.UpdateSession(ctx, 1, func(s *casting.Session) error {
		s.Assignments[casting.MainProposal][1] = 102
		return nil
	})
	require.NoError(t, err)

	loaded, err := store.LoadSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 102}, loaded.Assignments[casting.MainProposal])
}

func TestMemoryStore_FailedUpdateLeavesSessionUnchanged(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveSession(ctx, newSession(1)))
	boom := errors.New("boom")

	err := store.UpdateSession(ctx, 1, func(s *casting.Session) error {
		s.Assignments[casting.MainProposal][1] = 102
		s.Validated = true
		return boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := store.LoadSession(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, loaded.Assignments[casting.MainProposal])
	assert.False(t, loaded.Validated)
}

func TestMemoryStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveSession(ctx, newSession(1)))

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.UpdateSession(ctx, 1, func(s *casting.Session) error {
				c := casting.NewController(s, casting.Options{})
				_, err := c.CreateProposal("draft")
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	loaded, err := store.LoadSession(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, loaded.Proposals, workers)
	assert.Equal(t, workers+1, loaded.NextProposalID)
}

func TestMemoryStore_Announcements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.InsertAnnouncement(ctx, Announcement{ID: "a", EventID: 1, ParticipantID: 101, RoleID: 1}))
	require.NoError(t, store.InsertAnnouncement(ctx, Announcement{ID: "b", EventID: 2, ParticipantID: 102, RoleID: 1}))

	announcements, err := store.GetAnnouncements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	assert.Equal(t, 101, announcements[0].ParticipantID)
}

func TestNewMemoryStoreFromFile(t *testing.T) {
	first, err := casting.MarshalSession(newSession(1))
	require.NoError(t, err)
	second, err := casting.MarshalSession(newSession(2))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sessions.json")
	content := "[" + string(first) + "," + string(second) + "]"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store, err := NewMemoryStoreFromFile(path)
	require.NoError(t, err)

	loaded, err := store.LoadSession(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.EventID)
	assert.Len(t, loaded.Roles, 1)
}

func TestNewMemoryStoreFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewMemoryStoreFromFile(path)
	assert.Error(t, err)

	_, err = NewMemoryStoreFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
