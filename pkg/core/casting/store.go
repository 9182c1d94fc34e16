package casting

import (
	"fmt"
	"maps"

	"github.com/gnmanager/casting/pkg/core/allocator"
)

// AssignmentStore is a view over the per-proposal assignments of a session.
// It guards the one-role-per-participant and type-match invariants and the
// validation lock on main.
type AssignmentStore struct {
	session *Session
	scores  *ScoreMatrix
}

// NewAssignmentStore returns an AssignmentStore operating on the given session
func NewAssignmentStore(session *Session, scores *ScoreMatrix) *AssignmentStore {
	return &AssignmentStore{session: session, scores: scores}
}

// Get returns a copy of the role -> participant mapping of a proposal.
// Unknown proposals yield an empty mapping.
func (s *AssignmentStore) Get(proposalID ProposalID) map[int]int {
	mapping := maps.Clone(s.session.Assignments[proposalID])
	if mapping == nil {
		mapping = make(map[int]int)
	}
	return mapping
}

// Holder returns the role held by a participant in a proposal
func (s *AssignmentStore) Holder(proposalID ProposalID, participantID int) (int, bool) {
	for roleID, assigned := range s.session.Assignments[proposalID] {
		if assigned == participantID {
			return roleID, true
		}
	}
	return 0, false
}

// Assign maps a role to a participant in a proposal, or clears the role when
// participantID is nil. A participant already holding another role must be
// unassigned first; swaps take two calls. Gender and sub-group mismatches are
// accepted and returned as warnings.
func (s *AssignmentStore) Assign(proposalID ProposalID, roleID int, participantID *int) ([]Warning, error) {
	if err := s.checkWritable(proposalID); err != nil {
		return nil, err
	}
	if !s.session.HasProposal(proposalID) {
		return nil, fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
	}
	role, ok := s.session.Role(roleID)
	if !ok {
		return nil, fmt.Errorf("%w: role %d", ErrNotFound, roleID)
	}

	if participantID == nil {
		delete(s.session.Assignments[proposalID], roleID)
		return nil, nil
	}

	participant, ok := s.session.Participant(*participantID)
	if !ok {
		return nil, fmt.Errorf("%w: participant %d", ErrNotFound, *participantID)
	}
	if !allocator.Compatible(role, participant) {
		return nil, fmt.Errorf("%w: role %q requires %s, participant %d is %s",
			ErrTypeMismatch, role.Name, role.Type, participant.ID, participant.Type)
	}
	if holder, held := s.Holder(proposalID, participant.ID); held && holder != roleID {
		return nil, fmt.Errorf("%w: participant %d holds role %d in proposal %s",
			ErrAlreadyAssignedElsewhere, participant.ID, holder, proposalID)
	}

	mapping := s.session.Assignments[proposalID]
	if mapping == nil {
		mapping = make(map[int]int)
		s.session.Assignments[proposalID] = mapping
	}
	mapping[roleID] = participant.ID

	return pairingWarnings(role, participant), nil
}

// UnassignParticipant clears whichever role the participant holds in a proposal
func (s *AssignmentStore) UnassignParticipant(proposalID ProposalID, participantID int) error {
	if err := s.checkWritable(proposalID); err != nil {
		return err
	}
	if roleID, held := s.Holder(proposalID, participantID); held {
		delete(s.session.Assignments[proposalID], roleID)
	}
	return nil
}

// ResetProposal clears every mapping of a proposal and returns how many were cleared
func (s *AssignmentStore) ResetProposal(proposalID ProposalID) (int, error) {
	if err := s.checkWritable(proposalID); err != nil {
		return 0, err
	}
	cleared := len(s.session.Assignments[proposalID])
	if proposalID.IsMain() {
		s.session.Assignments[MainProposal] = make(map[int]int)
	} else {
		delete(s.session.Assignments, proposalID)
	}
	return cleared, nil
}

// DeleteProposal removes the assignments and scores of a named proposal
func (s *AssignmentStore) DeleteProposal(proposalID ProposalID) error {
	if proposalID.IsMain() {
		return fmt.Errorf("%w: main proposal cannot be deleted", ErrInvalidProposal)
	}
	delete(s.session.Assignments, proposalID)
	s.scores.ClearProposal(proposalID)
	return nil
}

// replaceMain overwrites main with the given mapping. Callers check the lock.
func (s *AssignmentStore) replaceMain(mapping map[int]int) {
	s.session.Assignments[MainProposal] = maps.Clone(mapping)
}

func (s *AssignmentStore) checkWritable(proposalID ProposalID) error {
	if proposalID.IsMain() && s.session.Validated {
		return ErrValidationLocked
	}
	return nil
}
