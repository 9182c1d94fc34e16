package casting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gnmanager/casting/pkg/core/allocator"
)

// Options tunes controller behaviour
type Options struct {
	// DropUnscoredPairs keeps auto-assign from filling roles with unscored pairs
	DropUnscoredPairs bool
}

// Controller exposes the casting operations of one session. Every operation
// validates its input before mutating, so a failed call leaves the session
// as it was.
type Controller struct {
	session *Session
	scores  *ScoreMatrix
	store   *AssignmentStore
	options Options
}

// NewController wraps a session. The session is normalized first.
func NewController(session *Session, options Options) *Controller {
	session.Normalize()
	scores := NewScoreMatrix(session)
	return &Controller{
		session: session,
		scores:  scores,
		store:   NewAssignmentStore(session, scores),
		options: options,
	}
}

func (c *Controller) Session() *Session {
	return c.session
}

func (c *Controller) Scores() *ScoreMatrix {
	return c.scores
}

func (c *Controller) Assignments() *AssignmentStore {
	return c.store
}

// CreateProposal adds a named proposal with a fresh ID
func (c *Controller) CreateProposal(name string) (Proposal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Proposal{}, ErrEmptyName
	}

	proposal := Proposal{ID: ProposalID(c.session.NextProposalID), Name: name}
	c.session.NextProposalID++
	c.session.Proposals = append(c.session.Proposals, proposal)
	c.session.Assignments[proposal.ID] = make(map[int]int)
	return proposal, nil
}

// RenameProposal changes the name of a named proposal
func (c *Controller) RenameProposal(proposalID ProposalID, name string) (Proposal, error) {
	if proposalID.IsMain() {
		return Proposal{}, fmt.Errorf("%w: main proposal cannot be renamed", ErrInvalidProposal)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Proposal{}, ErrEmptyName
	}
	i := slices.IndexFunc(c.session.Proposals, func(p Proposal) bool { return p.ID == proposalID })
	if i < 0 {
		return Proposal{}, fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
	}

	c.session.Proposals[i].Name = name
	return c.session.Proposals[i], nil
}

// DeleteProposal removes a named proposal with its assignments and scores
func (c *Controller) DeleteProposal(proposalID ProposalID) error {
	if proposalID.IsMain() {
		return fmt.Errorf("%w: main proposal cannot be deleted", ErrInvalidProposal)
	}
	if _, ok := c.session.Proposal(proposalID); !ok {
		return fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
	}

	if err := c.store.DeleteProposal(proposalID); err != nil {
		return err
	}
	c.session.Proposals = slices.DeleteFunc(c.session.Proposals, func(p Proposal) bool { return p.ID == proposalID })
	return nil
}

// Assign maps a role to a participant, or clears the role when participantID is nil
func (c *Controller) Assign(proposalID ProposalID, roleID int, participantID *int) ([]Warning, error) {
	return c.store.Assign(proposalID, roleID, participantID)
}

// UnassignParticipant clears the role held by a participant in a proposal
func (c *Controller) UnassignParticipant(proposalID ProposalID, participantID int) error {
	if !c.session.HasProposal(proposalID) {
		return fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
	}
	if _, ok := c.session.Participant(participantID); !ok {
		return fmt.Errorf("%w: participant %d", ErrNotFound, participantID)
	}
	return c.store.UnassignParticipant(proposalID, participantID)
}

// UpdateScore records the score of a role in a named proposal
func (c *Controller) UpdateScore(proposalID ProposalID, roleID, score int) error {
	if proposalID.IsMain() {
		return fmt.Errorf("%w: main proposal has no scores", ErrInvalidProposal)
	}
	if !c.session.HasProposal(proposalID) {
		return fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
	}
	if _, ok := c.session.Role(roleID); !ok {
		return fmt.Errorf("%w: role %d", ErrNotFound, roleID)
	}
	return c.scores.Set(proposalID, roleID, score)
}

// AutoAssignResult reports what RunAutoAssign wrote into main
type AutoAssignResult struct {
	AssignedCount int                       `json:"assigned_count"`
	TotalRoles    int                       `json:"total_roles"`
	TotalScore    int                       `json:"total_score"`
	Buckets       []allocator.BucketOutcome `json:"-"`
}

// RunAutoAssign replaces main with the maximum-score casting derived from the
// named proposals. Named proposals are left untouched.
func (c *Controller) RunAutoAssign() (AutoAssignResult, error) {
	if c.session.Validated {
		return AutoAssignResult{}, ErrValidationLocked
	}

	outcome := allocator.Allocate(allocator.AllocationConfig{
		Roles:             c.session.Roles,
		Participants:      c.session.Participants,
		Scorer:            c.scores.Weights(),
		DropUnscoredPairs: c.options.DropUnscoredPairs,
	})
	c.store.replaceMain(outcome.Assignments)

	return AutoAssignResult{
		AssignedCount: outcome.AssignedCount,
		TotalRoles:    outcome.TotalRoles,
		TotalScore:    outcome.TotalScore,
		Buckets:       outcome.Buckets,
	}, nil
}

// SetValidation sets or lifts the lock on main
func (c *Controller) SetValidation(validated bool) bool {
	c.session.Validated = validated
	return c.session.Validated
}

// ResetMain clears main and returns how many roles were unassigned
func (c *Controller) ResetMain() (int, error) {
	return c.store.ResetProposal(MainProposal)
}

// Warnings lists the gender and sub-group mismatches of a proposal
func (c *Controller) Warnings(proposalID ProposalID) ([]Warning, error) {
	if !c.session.HasProposal(proposalID) {
		return nil, fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
	}
	return proposalWarnings(c.session, c.session.Assignments[proposalID]), nil
}
