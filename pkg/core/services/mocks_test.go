package services

import (
	"context"
	"fmt"

	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/core/model"
	"github.com/gnmanager/casting/pkg/db"
)

// mockCastingStore implements CastingStore and CommunicateRolesStore for testing.
// UpdateSession works on a clone and keeps it only when fn succeeds.
type mockCastingStore struct {
	sessions      map[int]*casting.Session
	announcements []db.Announcement
	loadErr       error
	saveErr       error
	insertErr     error
	updates       int
}

func newMockCastingStore(sessions ...*casting.Session) *mockCastingStore {
	store := &mockCastingStore{sessions: make(map[int]*casting.Session)}
	for _, s := range sessions {
		store.sessions[s.EventID] = s
	}
	return store
}

func (m *mockCastingStore) LoadSession(ctx context.Context, eventID int) (*casting.Session, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	session, ok := m.sessions[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: event %d", casting.ErrNotFound, eventID)
	}
	return session.Clone(), nil
}

func (m *mockCastingStore) UpdateSession(ctx context.Context, eventID int, fn func(*casting.Session) error) error {
	m.updates++
	session, err := m.LoadSession(ctx, eventID)
	if err != nil {
		return err
	}
	if err := fn(session); err != nil {
		return err
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[eventID] = session
	return nil
}

func (m *mockCastingStore) GetAnnouncements(ctx context.Context, eventID int) ([]db.Announcement, error) {
	var result []db.Announcement
	for _, a := range m.announcements {
		if a.EventID == eventID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockCastingStore) InsertAnnouncement(ctx context.Context, announcement db.Announcement) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.announcements = append(m.announcements, announcement)
	return nil
}

// mockGmailClient implements GmailClient for testing
type mockGmailClient struct {
	sentEmails []string
	subjects   []string
	failFor    map[string]error
}

func (m *mockGmailClient) SendEmail(to, subject, body string) error {
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sentEmails = append(m.sentEmails, to)
	m.subjects = append(m.subjects, subject)
	return nil
}

// newEventSession builds event 7 with two PJ roles, one PNJ role and matching participants
func newEventSession() *casting.Session {
	return casting.NewSession(7,
		[]model.Role{
			{ID: 1, Name: "Chevalier", Type: model.TypePlayer, Gender: model.GenderMale},
			{ID: 2, Name: "Espionne", Type: model.TypePlayer},
			{ID: 3, Name: "Aubergiste", Type: model.TypeNonPlayer},
		},
		model.GroupParticipants([]model.Participant{
			{ID: 101, Name: "Alex", Type: model.TypePlayer, Gender: model.GenderMale, Email: "alex@example.com"},
			{ID: 102, Name: "Camille", Type: model.TypePlayer, Gender: model.GenderFemale, Email: "camille@example.com"},
			{ID: 201, Name: "Dominique", Type: model.TypeNonPlayer, Email: "dominique@example.com"},
		}),
	)
}

func ptr(id int) *int {
	return &id
}
