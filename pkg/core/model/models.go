package model

import (
	"maps"
	"slices"
)

// ParticipantType is the participation category shared by roles and participants
type ParticipantType string

const (
	TypePlayer    ParticipantType = "PJ"
	TypeNonPlayer ParticipantType = "PNJ"
	TypeOrganizer ParticipantType = "Organisateur"
)

// ParticipantTypes lists every known type in display order
var ParticipantTypes = []ParticipantType{TypePlayer, TypeNonPlayer, TypeOrganizer}

func (t ParticipantType) IsValid() bool {
	return t == TypePlayer || t == TypeNonPlayer || t == TypeOrganizer
}

// Gender values used by roles and participants
const (
	GenderMale   = "H"
	GenderFemale = "F"
	GenderOther  = "Autre"
)

// Role is a position at the event that requires exactly one participant of its type
type Role struct {
	ID      int
	Name    string
	Type    ParticipantType
	Group   string // Sub-group label, empty if none
	Gender  string // Empty or GenderOther means no constraint
	Comment string
}

// HasGenderConstraint reports whether the role asks for a specific gender
func (r Role) HasGenderConstraint() bool {
	return r.Gender != "" && r.Gender != GenderOther
}

// Participant is a person registered to the event who can be cast into roles of their type
type Participant struct {
	ID      int
	Name    string
	Type    ParticipantType
	Gender  string
	Group   string
	Comment string
	Email   string
}

// ParticipantsByType groups participants by their type, preserving order within each bucket
type ParticipantsByType map[ParticipantType][]Participant

// Types returns the bucket keys in sorted order
func (p ParticipantsByType) Types() []ParticipantType {
	return slices.Sorted(maps.Keys(p))
}

// Find returns the first participant with the given ID, scanning buckets in
// sorted type order
func (p ParticipantsByType) Find(id int) (Participant, bool) {
	for _, participantType := range p.Types() {
		for _, participant := range p[participantType] {
			if participant.ID == id {
				return participant, true
			}
		}
	}
	return Participant{}, false
}

// Count returns the total number of participants across all buckets
func (p ParticipantsByType) Count() int {
	count := 0
	for _, bucket := range p {
		count += len(bucket)
	}
	return count
}

// GroupParticipants builds a ParticipantsByType from a flat list, keeping input order
func GroupParticipants(participants []Participant) ParticipantsByType {
	grouped := make(ParticipantsByType)
	for _, p := range participants {
		grouped[p.Type] = append(grouped[p.Type], p)
	}
	return grouped
}

// GroupsConfig maps each participant type to the sub-groups organizers may pick from
type GroupsConfig map[ParticipantType][]string

// DefaultGroupsConfig returns the groups configuration used when an event defines none
func DefaultGroupsConfig() GroupsConfig {
	return GroupsConfig{
		TypePlayer:    {"Peu importe"},
		TypeNonPlayer: {"Peu importe"},
		TypeOrganizer: {"général", "coordinateur", "scénariste", "logisticien", "crafteur", "en charge des PNJ"},
	}
}
