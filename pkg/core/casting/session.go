package casting

import (
	"maps"
	"slices"

	"github.com/gnmanager/casting/pkg/core/model"
)

// Session is the full casting state of one event. It is loaded for a single
// request, mutated by one operation and written back; nothing in this package
// keeps a session alive between requests.
type Session struct {
	EventID int

	// Roles of the event in display order
	Roles []model.Role

	// Participants eligible for casting, grouped by type
	Participants model.ParticipantsByType

	// Proposals lists the named proposals in creation order; main is implicit
	Proposals []Proposal

	// Assignments holds role ID -> participant ID per proposal, main included
	Assignments map[ProposalID]map[int]int

	// Scores holds role ID -> score per named proposal
	Scores map[ProposalID]map[int]int

	// Validated freezes the main assignment while true
	Validated bool

	// NextProposalID is the ID the next created proposal receives; IDs are never reused
	NextProposalID int

	GroupsConfig model.GroupsConfig
}

// NewSession creates an empty session for the given roles and participants
func NewSession(eventID int, roles []model.Role, participants model.ParticipantsByType) *Session {
	if participants == nil {
		participants = make(model.ParticipantsByType)
	}
	return &Session{
		EventID:        eventID,
		Roles:          roles,
		Participants:   participants,
		Proposals:      []Proposal{},
		Assignments:    map[ProposalID]map[int]int{MainProposal: {}},
		Scores:         map[ProposalID]map[int]int{},
		NextProposalID: 1,
		GroupsConfig:   model.DefaultGroupsConfig(),
	}
}

// Role looks up a role by ID
func (s *Session) Role(id int) (model.Role, bool) {
	for _, role := range s.Roles {
		if role.ID == id {
			return role, true
		}
	}
	return model.Role{}, false
}

// Participant looks up a participant by ID
func (s *Session) Participant(id int) (model.Participant, bool) {
	return s.Participants.Find(id)
}

// Proposal looks up a named proposal by ID
func (s *Session) Proposal(id ProposalID) (Proposal, bool) {
	for _, p := range s.Proposals {
		if p.ID == id {
			return p, true
		}
	}
	return Proposal{}, false
}

// HasProposal reports whether id refers to main or to an existing named proposal
func (s *Session) HasProposal(id ProposalID) bool {
	if id.IsMain() {
		return true
	}
	_, ok := s.Proposal(id)
	return ok
}

// ProposalIDs returns main followed by every named proposal
func (s *Session) ProposalIDs() []ProposalID {
	ids := make([]ProposalID, 0, len(s.Proposals)+1)
	ids = append(ids, MainProposal)
	for _, p := range s.Proposals {
		ids = append(ids, p.ID)
	}
	return ids
}

// Normalize fills nil maps and drops assignment or score entries that point at
// roles, participants or proposals the session no longer knows about. Stores
// call it after loading, since roles and participants are edited elsewhere.
func (s *Session) Normalize() {
	if s.Participants == nil {
		s.Participants = make(model.ParticipantsByType)
	}
	if s.Proposals == nil {
		s.Proposals = []Proposal{}
	}
	if s.Assignments == nil {
		s.Assignments = map[ProposalID]map[int]int{}
	}
	if s.Scores == nil {
		s.Scores = map[ProposalID]map[int]int{}
	}
	if s.GroupsConfig == nil {
		s.GroupsConfig = model.DefaultGroupsConfig()
	}

	// A participant ID is unique per event and filed under its own type
	seenParticipants := make(map[int]bool)
	for _, participantType := range s.Participants.Types() {
		kept := s.Participants[participantType][:0]
		for _, p := range s.Participants[participantType] {
			if p.Type != participantType || seenParticipants[p.ID] {
				continue
			}
			seenParticipants[p.ID] = true
			kept = append(kept, p)
		}
		s.Participants[participantType] = kept
	}

	for _, p := range s.Proposals {
		if int(p.ID) >= s.NextProposalID {
			s.NextProposalID = int(p.ID) + 1
		}
	}
	if s.NextProposalID < 1 {
		s.NextProposalID = 1
	}

	for proposalID, mapping := range s.Assignments {
		if !s.HasProposal(proposalID) {
			delete(s.Assignments, proposalID)
			continue
		}
		seen := make(map[int]bool)
		for _, roleID := range slices.Sorted(maps.Keys(mapping)) {
			participantID := mapping[roleID]
			role, roleOK := s.Role(roleID)
			participant, participantOK := s.Participant(participantID)
			if !roleOK || !participantOK || seen[participantID] || role.Type != participant.Type {
				delete(mapping, roleID)
				continue
			}
			seen[participantID] = true
		}
	}
	if s.Assignments[MainProposal] == nil {
		s.Assignments[MainProposal] = map[int]int{}
	}

	for proposalID, scores := range s.Scores {
		if proposalID.IsMain() || !s.HasProposal(proposalID) {
			delete(s.Scores, proposalID)
			continue
		}
		for roleID, score := range scores {
			if _, ok := s.Role(roleID); !ok || score < MinScore || score > MaxScore {
				delete(scores, roleID)
			}
		}
	}
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	clone := &Session{
		EventID:        s.EventID,
		Roles:          slices.Clone(s.Roles),
		Participants:   make(model.ParticipantsByType, len(s.Participants)),
		Proposals:      slices.Clone(s.Proposals),
		Assignments:    make(map[ProposalID]map[int]int, len(s.Assignments)),
		Scores:         make(map[ProposalID]map[int]int, len(s.Scores)),
		Validated:      s.Validated,
		NextProposalID: s.NextProposalID,
		GroupsConfig:   make(model.GroupsConfig, len(s.GroupsConfig)),
	}
	for t, bucket := range s.Participants {
		clone.Participants[t] = slices.Clone(bucket)
	}
	for id, mapping := range s.Assignments {
		clone.Assignments[id] = maps.Clone(mapping)
	}
	for id, scores := range s.Scores {
		clone.Scores[id] = maps.Clone(scores)
	}
	for t, groups := range s.GroupsConfig {
		clone.GroupsConfig[t] = slices.Clone(groups)
	}
	if clone.Proposals == nil {
		clone.Proposals = []Proposal{}
	}
	return clone
}
