package casting

import (
	"fmt"
	"maps"

	"github.com/gnmanager/casting/pkg/core/allocator"
)

// Score bounds, inclusive
const (
	MinScore = 0
	MaxScore = 10
)

// ScoreMatrix is a view over the per-proposal scores of a session
type ScoreMatrix struct {
	session *Session
}

// NewScoreMatrix returns a ScoreMatrix operating on the given session
func NewScoreMatrix(session *Session) *ScoreMatrix {
	return &ScoreMatrix{session: session}
}

// Get returns the score of a role in a proposal, 0 when unset
func (m *ScoreMatrix) Get(proposalID ProposalID, roleID int) (int, error) {
	if proposalID.IsMain() {
		return 0, fmt.Errorf("%w: main proposal has no scores", ErrInvalidProposal)
	}
	return m.session.Scores[proposalID][roleID], nil
}

// Set records the score of a role in a proposal
func (m *ScoreMatrix) Set(proposalID ProposalID, roleID, score int) error {
	if proposalID.IsMain() {
		return fmt.Errorf("%w: main proposal has no scores", ErrInvalidProposal)
	}
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: %d is not within [%d, %d]", ErrOutOfRange, score, MinScore, MaxScore)
	}

	scores := m.session.Scores[proposalID]
	if scores == nil {
		scores = make(map[int]int)
		m.session.Scores[proposalID] = scores
	}
	scores[roleID] = score
	return nil
}

// ClearProposal removes every score of a proposal
func (m *ScoreMatrix) ClearProposal(proposalID ProposalID) {
	delete(m.session.Scores, proposalID)
}

// Proposal returns a copy of the role -> score map of one proposal
func (m *ScoreMatrix) Proposal(proposalID ProposalID) map[int]int {
	scores := maps.Clone(m.session.Scores[proposalID])
	if scores == nil {
		scores = make(map[int]int)
	}
	return scores
}

// Weight is the solver edge weight of a (role, participant) pair: the sum of
// the role's scores over every named proposal that casts this participant in it.
func (m *ScoreMatrix) Weight(roleID, participantID int) int {
	total := 0
	for _, proposal := range m.session.Proposals {
		assigned, ok := m.session.Assignments[proposal.ID][roleID]
		if !ok || assigned != participantID {
			continue
		}
		total += m.session.Scores[proposal.ID][roleID]
	}
	return total
}

// Weights computes Weight for every pair in a single pass over the proposals
func (m *ScoreMatrix) Weights() allocator.Scorer {
	type pair struct{ roleID, participantID int }
	table := make(map[pair]int)
	for _, proposal := range m.session.Proposals {
		scores := m.session.Scores[proposal.ID]
		for roleID, participantID := range m.session.Assignments[proposal.ID] {
			table[pair{roleID, participantID}] += scores[roleID]
		}
	}
	return allocator.ScorerFunc(func(roleID, participantID int) int {
		return table[pair{roleID, participantID}]
	})
}
