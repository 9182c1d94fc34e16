package db

import (
	"context"

	"github.com/gnmanager/casting/pkg/core/casting"
)

// SessionStore defines the persistence operations on casting sessions.
// Implementations serialize UpdateSession calls per event and persist the
// session only when fn returns nil.
type SessionStore interface {
	LoadSession(ctx context.Context, eventID int) (*casting.Session, error)
	SaveSession(ctx context.Context, session *casting.Session) error
	UpdateSession(ctx context.Context, eventID int, fn func(*casting.Session) error) error
}

// AnnouncementStore defines the operations used to track role announcements
type AnnouncementStore interface {
	GetAnnouncements(ctx context.Context, eventID int) ([]Announcement, error)
	InsertAnnouncement(ctx context.Context, announcement Announcement) error
}

// Database defines the interface for all database operations.
// Both the in-memory MemoryStore and postgres.DB implement this interface.
type Database interface {
	SessionStore
	AnnouncementStore
	Close()
}
