package casting

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/gnmanager/casting/pkg/core/model"
)

// RoleView is a role as rendered to API callers
type RoleView struct {
	ID                    int                   `json:"id"`
	Name                  string                `json:"name"`
	Type                  model.ParticipantType `json:"type"`
	Group                 string                `json:"group"`
	Gender                string                `json:"gender"`
	Comment               string                `json:"comment"`
	AssignedParticipantID *int                  `json:"assigned_participant_id"`
}

// ParticipantView is a participant as rendered to API callers
type ParticipantView struct {
	ID      int                   `json:"id"`
	Name    string                `json:"name"`
	Type    model.ParticipantType `json:"type"`
	Gender  string                `json:"gender"`
	Group   string                `json:"group"`
	Comment string                `json:"comment"`
	Email   string                `json:"email,omitempty"`
	RoleID  *int                  `json:"role_id"`
}

// CastingData is the full read view of a session
type CastingData struct {
	Roles              []RoleView                                  `json:"roles"`
	ParticipantsByType map[model.ParticipantType][]ParticipantView `json:"participants_by_type"`
	Proposals          []Proposal                                  `json:"proposals"`
	Assignments        map[ProposalID]map[int]int                  `json:"assignments"`
	Scores             map[ProposalID]map[int]int                  `json:"scores"`
	IsCastingValidated bool                                        `json:"is_casting_validated"`
	GroupsConfig       model.GroupsConfig                          `json:"groups_config"`
}

// Data builds the read view of the session. Roles and participants carry the
// main assignment on both sides.
func (c *Controller) Data() CastingData {
	return NewCastingData(c.session)
}

// NewCastingData builds the read view of a session without mutating it
func NewCastingData(session *Session) CastingData {
	main := session.Assignments[MainProposal]
	roleOf := make(map[int]int, len(main))
	for roleID, participantID := range main {
		roleOf[participantID] = roleID
	}

	data := CastingData{
		Roles:              make([]RoleView, 0, len(session.Roles)),
		ParticipantsByType: make(map[model.ParticipantType][]ParticipantView, len(session.Participants)),
		Proposals:          append([]Proposal{}, session.Proposals...),
		Assignments:        map[ProposalID]map[int]int{MainProposal: {}},
		Scores:             make(map[ProposalID]map[int]int, len(session.Scores)),
		IsCastingValidated: session.Validated,
		GroupsConfig:       session.GroupsConfig,
	}

	for _, role := range session.Roles {
		view := RoleView{
			ID:      role.ID,
			Name:    role.Name,
			Type:    role.Type,
			Group:   role.Group,
			Gender:  role.Gender,
			Comment: role.Comment,
		}
		if participantID, ok := main[role.ID]; ok {
			view.AssignedParticipantID = &participantID
		}
		data.Roles = append(data.Roles, view)
	}

	for participantType, bucket := range session.Participants {
		views := make([]ParticipantView, 0, len(bucket))
		for _, p := range bucket {
			view := ParticipantView{
				ID:      p.ID,
				Name:    p.Name,
				Type:    p.Type,
				Gender:  p.Gender,
				Group:   p.Group,
				Comment: p.Comment,
				Email:   p.Email,
			}
			if roleID, ok := roleOf[p.ID]; ok {
				view.RoleID = &roleID
			}
			views = append(views, view)
		}
		data.ParticipantsByType[participantType] = views
	}

	for id, mapping := range session.Assignments {
		data.Assignments[id] = maps.Clone(mapping)
	}
	for id, scores := range session.Scores {
		data.Scores[id] = maps.Clone(scores)
	}

	return data
}

// sessionDocument is the serialized form of a session
type sessionDocument struct {
	EventID        int `json:"event_id"`
	NextProposalID int `json:"next_proposal_id"`
	CastingData
}

// MarshalSession encodes a session as its casting_data view plus the event
// ID and proposal counter
func MarshalSession(session *Session) ([]byte, error) {
	return json.Marshal(sessionDocument{
		EventID:        session.EventID,
		NextProposalID: session.NextProposalID,
		CastingData:    NewCastingData(session),
	})
}

// UnmarshalSession decodes a session written by MarshalSession. The result is
// normalized.
func UnmarshalSession(data []byte) (*Session, error) {
	var doc sessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	roles := make([]model.Role, 0, len(doc.Roles))
	for _, r := range doc.Roles {
		roles = append(roles, model.Role{
			ID:      r.ID,
			Name:    r.Name,
			Type:    r.Type,
			Group:   r.Group,
			Gender:  r.Gender,
			Comment: r.Comment,
		})
	}

	participants := make(model.ParticipantsByType, len(doc.ParticipantsByType))
	for participantType, views := range doc.ParticipantsByType {
		bucket := make([]model.Participant, 0, len(views))
		for _, p := range views {
			bucket = append(bucket, model.Participant{
				ID:      p.ID,
				Name:    p.Name,
				Type:    p.Type,
				Gender:  p.Gender,
				Group:   p.Group,
				Comment: p.Comment,
				Email:   p.Email,
			})
		}
		participants[participantType] = bucket
	}

	session := &Session{
		EventID:        doc.EventID,
		Roles:          roles,
		Participants:   participants,
		Proposals:      doc.Proposals,
		Assignments:    doc.Assignments,
		Scores:         doc.Scores,
		Validated:      doc.IsCastingValidated,
		NextProposalID: doc.NextProposalID,
		GroupsConfig:   doc.GroupsConfig,
	}
	session.Normalize()
	return session, nil
}
