package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/gnmanager/casting/pkg/core/casting"
)

// MemoryStore keeps sessions as serialized snapshots in memory. Each event has
// its own mutex, so updates to one event never wait on another.
type MemoryStore struct {
	mu            sync.Mutex
	locks         map[int]*sync.Mutex
	sessions      map[int][]byte
	announcements map[int][]Announcement
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:         make(map[int]*sync.Mutex),
		sessions:      make(map[int][]byte),
		announcements: make(map[int][]Announcement),
	}
}

// NewMemoryStoreFromFile creates an in-memory store seeded with the sessions
// of a JSON file holding an array of serialized sessions
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	sessions, err := ReadSessionsFile(path)
	if err != nil {
		return nil, err
	}

	store := NewMemoryStore()
	for _, session := range sessions {
		if err := store.SaveSession(context.Background(), session); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// ReadSessionsFile reads a JSON array of sessions serialized with casting.MarshalSession
func ReadSessionsFile(path string) ([]*casting.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions file: %w", err)
	}

	var documents []json.RawMessage
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("failed to parse sessions file %s: %w", path, err)
	}

	sessions := make([]*casting.Session, 0, len(documents))
	for i, document := range documents {
		session, err := casting.UnmarshalSession(document)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %d of %s: %w", i, path, err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// eventLock returns the mutex guarding one event, creating it on first use
func (m *MemoryStore) eventLock(eventID int) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[eventID] = lock
	}
	return lock
}

func (m *MemoryStore) snapshot(eventID int) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sessions[eventID]
	return data, ok
}

func (m *MemoryStore) load(eventID int) (*casting.Session, error) {
	data, ok := m.snapshot(eventID)
	if !ok {
		return nil, fmt.Errorf("%w: event %d", casting.ErrNotFound, eventID)
	}
	session, err := casting.UnmarshalSession(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", casting.ErrStorage, err)
	}
	return session, nil
}

func (m *MemoryStore) save(session *casting.Session) error {
	data, err := casting.MarshalSession(session)
	if err != nil {
		return fmt.Errorf("%w: failed to encode session: %w", casting.ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.EventID] = data
	return nil
}

// LoadSession returns a private copy of the stored session
func (m *MemoryStore) LoadSession(ctx context.Context, eventID int) (*casting.Session, error) {
	lock := m.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	return m.load(eventID)
}

// SaveSession stores a copy of the session, replacing any previous one
func (m *MemoryStore) SaveSession(ctx context.Context, session *casting.Session) error {
	lock := m.eventLock(session.EventID)
	lock.Lock()
	defer lock.Unlock()

	return m.save(session)
}

// UpdateSession loads a session, applies fn and stores the result while
// holding the event lock. Nothing is stored if fn fails.
func (m *MemoryStore) UpdateSession(ctx context.Context, eventID int, fn func(*casting.Session) error) error {
	lock := m.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := m.load(eventID)
	if err != nil {
		return err
	}
	if err := fn(session); err != nil {
		return err
	}
	session.EventID = eventID
	return m.save(session)
}

// GetAnnouncements returns the announcements sent for an event, oldest first
func (m *MemoryStore) GetAnnouncements(ctx context.Context, eventID int) ([]Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.announcements[eventID]), nil
}

// InsertAnnouncement records a sent announcement
func (m *MemoryStore) InsertAnnouncement(ctx context.Context, announcement Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announcements[announcement.EventID] = append(m.announcements[announcement.EventID], announcement)
	return nil
}

// Close is a no-op
func (m *MemoryStore) Close() {}
