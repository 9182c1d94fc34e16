package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gnmanager/casting/internal/config"
	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/db"
)

// ErrCastingNotValidated is returned when roles are announced before the casting is validated
var ErrCastingNotValidated = errors.New("casting must be validated before roles are communicated")

// RoleAnnouncement represents a participant who was told (or, in a dry run, would be told) their role
type RoleAnnouncement struct {
	ParticipantID   int
	ParticipantName string
	Email           string
	RoleID          int
	RoleName        string
}

// FailedEmail represents an announcement that could not be sent
type FailedEmail struct {
	ParticipantID   int
	ParticipantName string
	Email           string
	Error           string
}

// CommunicateRolesStore defines the database operations needed for announcing roles
type CommunicateRolesStore interface {
	LoadSession(ctx context.Context, eventID int) (*casting.Session, error)
	GetAnnouncements(ctx context.Context, eventID int) ([]db.Announcement, error)
	InsertAnnouncement(ctx context.Context, announcement db.Announcement) error
}

// GmailClient defines the operations needed to send emails
type GmailClient interface {
	SendEmail(to, subject, body string) error
}

// CommunicateRoles emails every participant cast in the validated main
// proposal their role. Participants already told about the same role are
// skipped, so the command can be re-run after failures or casting changes.
// With dryRun set nothing is sent or recorded.
func CommunicateRoles(
	ctx context.Context,
	store CommunicateRolesStore,
	gmailClient GmailClient,
	cfg *config.Config,
	logger *zap.Logger,
	eventID int,
	dryRun bool,
) ([]RoleAnnouncement, []FailedEmail, error) {
	logger.Debug("Starting communicateRoles", zap.Int("event_id", eventID), zap.Bool("dry_run", dryRun))

	// Step 1: Load the casting and check it is validated
	session, err := store.LoadSession(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load casting session: %w", err)
	}
	session.Normalize()
	if !session.Validated {
		return nil, nil, ErrCastingNotValidated
	}

	// Step 2: Find who has already been told about their current role
	previous, err := store.GetAnnouncements(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch announcements: %w", err)
	}
	announcedRole := make(map[int]int, len(previous))
	for _, a := range previous {
		announcedRole[a.ParticipantID] = a.RoleID
	}
	logger.Debug("Found previous announcements", zap.Int("count", len(previous)))

	// Step 3: Build the list of pending announcements in role order
	pending := []RoleAnnouncement{}
	failedEmails := []FailedEmail{}
	main := session.Assignments[casting.MainProposal]
	for _, role := range session.Roles {
		participantID, ok := main[role.ID]
		if !ok {
			continue
		}
		if roleID, told := announcedRole[participantID]; told && roleID == role.ID {
			logger.Debug("Skipping participant already told about their role",
				zap.Int("participant_id", participantID),
				zap.Int("role_id", role.ID))
			continue
		}

		participant, _ := session.Participant(participantID)
		if participant.Email == "" {
			logger.Warn("Participant has no email", zap.Int("participant_id", participant.ID))
			failedEmails = append(failedEmails, FailedEmail{
				ParticipantID:   participant.ID,
				ParticipantName: participant.Name,
				Error:           "no email address",
			})
			continue
		}

		pending = append(pending, RoleAnnouncement{
			ParticipantID:   participant.ID,
			ParticipantName: participant.Name,
			Email:           participant.Email,
			RoleID:          role.ID,
			RoleName:        role.Name,
		})
	}

	logger.Debug("Found pending announcements", zap.Int("count", len(pending)))
	if dryRun || len(pending) == 0 {
		return pending, failedEmails, nil
	}

	// Step 4: Send the emails and record each success
	batchID := uuid.NewString()
	sent := []RoleAnnouncement{}
	for _, announcement := range pending {
		subject := fmt.Sprintf("%sVotre rôle : %s", cfg.Gmail.SubjectPrefix, announcement.RoleName)
		body := fmt.Sprintf("Bonjour %s,\n\nLe casting est validé : tu joueras %s.\nTu recevras bientôt les détails de ton personnage.\n\nÀ très vite,\nL'équipe d'organisation\n",
			announcement.ParticipantName, announcement.RoleName)

		logger.Info("Sending role announcement",
			zap.Int("participant_id", announcement.ParticipantID),
			zap.String("email", announcement.Email))

		if err := gmailClient.SendEmail(announcement.Email, subject, body); err != nil {
			logger.Warn("Failed to send role announcement",
				zap.Int("participant_id", announcement.ParticipantID),
				zap.String("email", announcement.Email),
				zap.Error(err))

			failedEmails = append(failedEmails, FailedEmail{
				ParticipantID:   announcement.ParticipantID,
				ParticipantName: announcement.ParticipantName,
				Email:           announcement.Email,
				Error:           err.Error(),
			})
			continue
		}

		err := store.InsertAnnouncement(ctx, db.Announcement{
			ID:            uuid.NewString(),
			BatchID:       batchID,
			EventID:       eventID,
			ParticipantID: announcement.ParticipantID,
			RoleID:        announcement.RoleID,
			Email:         announcement.Email,
			SentAt:        time.Now().UTC(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to record announcement for participant %d: %w", announcement.ParticipantID, err)
		}

		sent = append(sent, announcement)
	}

	if len(sent) == 0 {
		return nil, nil, fmt.Errorf("all %d role announcement send attempts failed", len(pending))
	}

	logger.Debug("Communicate roles completed",
		zap.String("batch_id", batchID),
		zap.Int("sent", len(sent)),
		zap.Int("failed", len(failedEmails)))

	return sent, failedEmails, nil
}
