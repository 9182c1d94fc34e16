package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnmanager/casting/pkg/core/casting"
)

// PublishedCastingRow represents a single role in the published casting
type PublishedCastingRow struct {
	Role      string
	Type      string
	Group     string
	Main      string   // Name of the participant cast in main, blank if none
	Proposals []string // Participant names per named proposal, in proposal order
}

// PublishedCasting represents the complete published casting of an event
type PublishedCasting struct {
	EventID       int
	Validated     bool
	ProposalNames []string
	Rows          []PublishedCastingRow
}

// PublishCasting builds the table published to Google Sheets: one row per
// role with the participant cast in main and in every named proposal
func PublishCasting(ctx context.Context, store CastingStore, logger *zap.Logger, eventID int) (*PublishedCasting, error) {
	logger.Debug("Starting publishCasting", zap.Int("event_id", eventID))

	session, err := store.LoadSession(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load casting session: %w", err)
	}
	session.Normalize()

	names := make(map[int]string, session.Participants.Count())
	for _, bucket := range session.Participants {
		for _, p := range bucket {
			names[p.ID] = p.Name
		}
	}

	published := &PublishedCasting{
		EventID:       eventID,
		Validated:     session.Validated,
		ProposalNames: make([]string, 0, len(session.Proposals)),
		Rows:          make([]PublishedCastingRow, 0, len(session.Roles)),
	}
	for _, p := range session.Proposals {
		published.ProposalNames = append(published.ProposalNames, p.Name)
	}

	for _, role := range session.Roles {
		row := PublishedCastingRow{
			Role:      role.Name,
			Type:      string(role.Type),
			Group:     role.Group,
			Proposals: make([]string, 0, len(session.Proposals)),
		}
		if participantID, ok := session.Assignments[casting.MainProposal][role.ID]; ok {
			row.Main = names[participantID]
		}
		for _, p := range session.Proposals {
			cast := ""
			if participantID, ok := session.Assignments[p.ID][role.ID]; ok {
				cast = names[participantID]
			}
			row.Proposals = append(row.Proposals, cast)
		}
		published.Rows = append(published.Rows, row)
	}

	logger.Debug("Built published casting",
		zap.Int("event_id", eventID),
		zap.Int("rows", len(published.Rows)),
		zap.Int("proposals", len(published.ProposalNames)))

	return published, nil
}
