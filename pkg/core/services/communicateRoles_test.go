package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnmanager/casting/internal/config"
	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/db"
)

func newCommunicateConfig() *config.Config {
	return &config.Config{
		Gmail: config.GmailConfig{SubjectPrefix: "[GN] "},
	}
}

// newValidatedStore returns a store whose event 7 has a validated main of
// Chevalier -> Alex and Aubergiste -> Dominique
func newValidatedStore(t *testing.T) *mockCastingStore {
	t.Helper()
	store := newMockCastingStore(newEventSession())
	ctx := context.Background()

	_, err := Assign(ctx, store, zap.NewNop(), 7, casting.MainProposal, 1, ptr(101))
	require.NoError(t, err)
	_, err = Assign(ctx, store, zap.NewNop(), 7, casting.MainProposal, 3, ptr(201))
	require.NoError(t, err)
	_, err = ToggleValidation(ctx, store, zap.NewNop(), 7, true)
	require.NoError(t, err)
	return store
}

func TestCommunicateRoles_RequiresValidation(t *testing.T) {
	store := newMockCastingStore(newEventSession())
	gmail := &mockGmailClient{}

	_, _, err := CommunicateRoles(context.Background(), store, gmail, newCommunicateConfig(), zap.NewNop(), 7, false)
	assert.ErrorIs(t, err, ErrCastingNotValidated)
	assert.Empty(t, gmail.sentEmails)
}

func TestCommunicateRoles_SendsAndRecords(t *testing.T) {
	store := newValidatedStore(t)
	gmail := &mockGmailClient{}

	sent, failed, err := CommunicateRoles(context.Background(), store, gmail, newCommunicateConfig(), zap.NewNop(), 7, false)
	require.NoError(t, err)

	assert.Empty(t, failed)
	require.Len(t, sent, 2)
	assert.Equal(t, "Chevalier", sent[0].RoleName)
	assert.Equal(t, "Aubergiste", sent[1].RoleName)
	assert.Equal(t, []string{"alex@example.com", "dominique@example.com"}, gmail.sentEmails)
	assert.Equal(t, "[GN] Votre rôle : Chevalier", gmail.subjects[0])

	require.Len(t, store.announcements, 2)
	assert.Equal(t, store.announcements[0].BatchID, store.announcements[1].BatchID)
	assert.Equal(t, 101, store.announcements[0].ParticipantID)
	assert.Equal(t, 1, store.announcements[0].RoleID)
}

func TestCommunicateRoles_DryRun(t *testing.T) {
	store := newValidatedStore(t)
	gmail := &mockGmailClient{}

	pending, failed, err := CommunicateRoles(context.Background(), store, gmail, newCommunicateConfig(), zap.NewNop(), 7, true)
	require.NoError(t, err)

	assert.Len(t, pending, 2)
	assert.Empty(t, failed)
	assert.Empty(t, gmail.sentEmails)
	assert.Empty(t, store.announcements)
}

func TestCommunicateRoles_SkipsAlreadyAnnounced(t *testing.T) {
	store := newValidatedStore(t)
	store.announcements = []db.Announcement{
		{EventID: 7, ParticipantID: 101, RoleID: 1},
		// Dominique was told about a role they no longer hold
		{EventID: 7, ParticipantID: 201, RoleID: 2},
	}
	gmail := &mockGmailClient{}

	sent, _, err := CommunicateRoles(context.Background(), store, gmail, newCommunicateConfig(), zap.NewNop(), 7, false)
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, 201, sent[0].ParticipantID)
	assert.Equal(t, []string{"dominique@example.com"}, gmail.sentEmails)
}

func TestCommunicateRoles_NothingPending(t *testing.T) {
	store := newValidatedStore(t)
	store.announcements = []db.Announcement{
		{EventID: 7, ParticipantID: 101, RoleID: 1},
		{EventID: 7, ParticipantID: 201, RoleID: 3},
	}
	gmail := &mockGmailClient{}

	sent, failed, err := CommunicateRoles(context.Background(), store, gmail, newCommunicateConfig(), zap.NewNop(), 7, false)
	require.NoError(t, err)

	assert.Empty(t, sent)
	assert.Empty(t, failed)
	assert.Empty(t, gmail.sentEmails)
}

func TestCommunicateRoles_MissingEmail(t *testing.T) {
	session := newEventSession()
	session.Participants["PNJ"][0].Email = ""
	store := newMockCastingStore(session)
	ctx := context.Background()
	_, err := Assign(ctx, store, zap.NewNop(), 7, casting.MainProposal, 1, ptr(101))
	require.NoError(t, err)
	_, err = Assign(ctx, store, zap.NewNop(), 7, casting.MainProposal, 3, ptr(201))
	require.NoError(t, err)
	_, err = ToggleValidation(ctx, store, zap.NewNop(), 7, true)
	require.NoError(t, err)
	gmail := &mockGmailClient{}

	sent, failed, err := CommunicateRoles(ctx, store, gmail, newCommunicateConfig(), zap.NewNop(), 7, false)
	require.NoError(t, err)

	require.Len(t, sent, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, 201, failed[0].ParticipantID)
	assert.Equal(t, "no email address", failed[0].Error)
}

func TestCommunicateRoles_PartialFailure(t *testing.T) {
	store := newValidatedStore(t)
	gmail := &mockGmailClient{failFor: map[string]error{
		"alex@example.com": errors.New("quota exceeded"),
	}}

	sent, failed, err := CommunicateRoles(context.Background(), store, gmail, newCommunicateConfig(), zap.NewNop(), 7, false)
	require.NoError(t, err)

	require.Len(t, sent, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, "alex@example.com", failed[0].Email)
	assert.Equal(t, "quota exceeded", failed[0].Error)
	require.Len(t, store.announcements, 1)
	assert.Equal(t, 201, store.announcements[0].ParticipantID)
}

func TestCommunicateRoles_AllFailed(t *testing.T) {
	store := newValidatedStore(t)
	gmail := &mockGmailClient{failFor: map[string]error{
		"alex@example.com":      errors.New("quota exceeded"),
		"dominique@example.com": errors.New("quota exceeded"),
	}}

	_, _, err := CommunicateRoles(context.Background(), store, gmail, newCommunicateConfig(), zap.NewNop(), 7, false)
	assert.ErrorContains(t, err, "all 2 role announcement send attempts failed")
	assert.Empty(t, store.announcements)
}

func TestCommunicateRoles_RecordFailure(t *testing.T) {
	store := newValidatedStore(t)
	store.insertErr = casting.ErrStorage
	gmail := &mockGmailClient{}

	_, _, err := CommunicateRoles(context.Background(), store, gmail, newCommunicateConfig(), zap.NewNop(), 7, false)
	assert.ErrorIs(t, err, casting.ErrStorage)
}
