package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnmanager/casting/pkg/core/casting"
)

// CastingStore defines the database operations needed by the casting services
type CastingStore interface {
	LoadSession(ctx context.Context, eventID int) (*casting.Session, error)
	UpdateSession(ctx context.Context, eventID int, fn func(*casting.Session) error) error
}

// updateCasting runs op on a controller over the stored session of an event.
// The store persists the session only if op succeeds.
func updateCasting(
	ctx context.Context,
	store CastingStore,
	options casting.Options,
	eventID int,
	op func(*casting.Controller) error,
) error {
	return store.UpdateSession(ctx, eventID, func(session *casting.Session) error {
		return op(casting.NewController(session, options))
	})
}

// CastingData returns the read view of an event's casting
func CastingData(ctx context.Context, store CastingStore, logger *zap.Logger, eventID int) (*casting.CastingData, error) {
	logger.Debug("Loading casting data", zap.Int("event_id", eventID))

	session, err := store.LoadSession(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load casting session: %w", err)
	}

	data := casting.NewController(session, casting.Options{}).Data()
	logger.Debug("Loaded casting data",
		zap.Int("event_id", eventID),
		zap.Int("roles", len(data.Roles)),
		zap.Int("proposals", len(data.Proposals)))

	return &data, nil
}

// Assign maps a role to a participant in a proposal, or clears the role when
// participantID is nil. Soft-constraint mismatches are returned as warnings.
func Assign(
	ctx context.Context,
	store CastingStore,
	logger *zap.Logger,
	eventID int,
	proposalID casting.ProposalID,
	roleID int,
	participantID *int,
) ([]casting.Warning, error) {
	fields := []zap.Field{
		zap.Int("event_id", eventID),
		zap.Stringer("proposal_id", proposalID),
		zap.Int("role_id", roleID),
	}
	if participantID != nil {
		fields = append(fields, zap.Int("participant_id", *participantID))
	}
	logger.Debug("Assigning role", fields...)

	var warnings []casting.Warning
	err := updateCasting(ctx, store, casting.Options{}, eventID, func(c *casting.Controller) error {
		var err error
		warnings, err = c.Assign(proposalID, roleID, participantID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign role %d: %w", roleID, err)
	}

	if len(warnings) > 0 {
		logger.Debug("Assignment has warnings", append(fields, zap.Int("warnings", len(warnings)))...)
	}
	return warnings, nil
}

// UnassignParticipant clears whichever role a participant holds in a proposal
func UnassignParticipant(
	ctx context.Context,
	store CastingStore,
	logger *zap.Logger,
	eventID int,
	proposalID casting.ProposalID,
	participantID int,
) error {
	logger.Debug("Unassigning participant",
		zap.Int("event_id", eventID),
		zap.Stringer("proposal_id", proposalID),
		zap.Int("participant_id", participantID))

	err := updateCasting(ctx, store, casting.Options{}, eventID, func(c *casting.Controller) error {
		return c.UnassignParticipant(proposalID, participantID)
	})
	if err != nil {
		return fmt.Errorf("failed to unassign participant %d: %w", participantID, err)
	}
	return nil
}

// UpdateScore records the score of a role in a named proposal
func UpdateScore(
	ctx context.Context,
	store CastingStore,
	logger *zap.Logger,
	eventID int,
	proposalID casting.ProposalID,
	roleID int,
	score int,
) error {
	logger.Debug("Updating score",
		zap.Int("event_id", eventID),
		zap.Stringer("proposal_id", proposalID),
		zap.Int("role_id", roleID),
		zap.Int("score", score))

	err := updateCasting(ctx, store, casting.Options{}, eventID, func(c *casting.Controller) error {
		return c.UpdateScore(proposalID, roleID, score)
	})
	if err != nil {
		return fmt.Errorf("failed to update score of role %d: %w", roleID, err)
	}
	return nil
}

// AddProposal creates a named proposal
func AddProposal(ctx context.Context, store CastingStore, logger *zap.Logger, eventID int, name string) (*casting.Proposal, error) {
	logger.Debug("Adding proposal", zap.Int("event_id", eventID), zap.String("name", name))

	var proposal casting.Proposal
	err := updateCasting(ctx, store, casting.Options{}, eventID, func(c *casting.Controller) error {
		var err error
		proposal, err = c.CreateProposal(name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add proposal: %w", err)
	}

	logger.Debug("Proposal added", zap.Int("event_id", eventID), zap.Stringer("proposal_id", proposal.ID))
	return &proposal, nil
}

// RenameProposal changes the name of a named proposal
func RenameProposal(
	ctx context.Context,
	store CastingStore,
	logger *zap.Logger,
	eventID int,
	proposalID casting.ProposalID,
	name string,
) (*casting.Proposal, error) {
	logger.Debug("Renaming proposal",
		zap.Int("event_id", eventID),
		zap.Stringer("proposal_id", proposalID),
		zap.String("name", name))

	var proposal casting.Proposal
	err := updateCasting(ctx, store, casting.Options{}, eventID, func(c *casting.Controller) error {
		var err error
		proposal, err = c.RenameProposal(proposalID, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rename proposal %s: %w", proposalID, err)
	}
	return &proposal, nil
}

// DeleteProposal removes a named proposal with its assignments and scores
func DeleteProposal(ctx context.Context, store CastingStore, logger *zap.Logger, eventID int, proposalID casting.ProposalID) error {
	logger.Debug("Deleting proposal", zap.Int("event_id", eventID), zap.Stringer("proposal_id", proposalID))

	err := updateCasting(ctx, store, casting.Options{}, eventID, func(c *casting.Controller) error {
		return c.DeleteProposal(proposalID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete proposal %s: %w", proposalID, err)
	}
	return nil
}

// AutoAssign replaces the main proposal with the best casting the scores allow
func AutoAssign(
	ctx context.Context,
	store CastingStore,
	options casting.Options,
	logger *zap.Logger,
	eventID int,
) (*casting.AutoAssignResult, error) {
	logger.Debug("Starting autoAssign",
		zap.Int("event_id", eventID),
		zap.Bool("drop_unscored_pairs", options.DropUnscoredPairs))

	var result casting.AutoAssignResult
	err := updateCasting(ctx, store, options, eventID, func(c *casting.Controller) error {
		var err error
		result, err = c.RunAutoAssign()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to auto-assign: %w", err)
	}

	for _, bucket := range result.Buckets {
		logger.Debug("Solved participant type",
			zap.Int("event_id", eventID),
			zap.String("type", string(bucket.Type)),
			zap.Int("roles", bucket.RoleCount),
			zap.Int("participants", bucket.ParticipantCount),
			zap.Int("assigned", bucket.AssignedCount),
			zap.Int("score", bucket.Score))
	}
	logger.Debug("Auto-assign completed",
		zap.Int("event_id", eventID),
		zap.Int("assigned_count", result.AssignedCount),
		zap.Int("total_roles", result.TotalRoles),
		zap.Int("total_score", result.TotalScore))

	return &result, nil
}

// ToggleValidation sets or lifts the validation lock on the main proposal
func ToggleValidation(ctx context.Context, store CastingStore, logger *zap.Logger, eventID int, validated bool) (bool, error) {
	logger.Debug("Setting casting validation", zap.Int("event_id", eventID), zap.Bool("validated", validated))

	var state bool
	err := updateCasting(ctx, store, casting.Options{}, eventID, func(c *casting.Controller) error {
		state = c.SetValidation(validated)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to set casting validation: %w", err)
	}
	return state, nil
}

// ResetMain clears the main proposal and returns how many roles were unassigned
func ResetMain(ctx context.Context, store CastingStore, logger *zap.Logger, eventID int) (int, error) {
	logger.Debug("Resetting main proposal", zap.Int("event_id", eventID))

	var count int
	err := updateCasting(ctx, store, casting.Options{}, eventID, func(c *casting.Controller) error {
		var err error
		count, err = c.ResetMain()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reset main proposal: %w", err)
	}

	logger.Debug("Main proposal reset", zap.Int("event_id", eventID), zap.Int("count", count))
	return count, nil
}

// Warnings lists the gender and sub-group mismatches of a proposal
func Warnings(
	ctx context.Context,
	store CastingStore,
	logger *zap.Logger,
	eventID int,
	proposalID casting.ProposalID,
) ([]casting.Warning, error) {
	logger.Debug("Listing warnings", zap.Int("event_id", eventID), zap.Stringer("proposal_id", proposalID))

	session, err := store.LoadSession(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load casting session: %w", err)
	}

	warnings, err := casting.NewController(session, casting.Options{}).Warnings(proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings of proposal %s: %w", proposalID, err)
	}
	return warnings, nil
}
