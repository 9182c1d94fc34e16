package casting

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gnmanager/casting/pkg/core/model"
)

// AnyGroup is the sub-group label meaning "no preference"
const AnyGroup = "Peu importe"

// Warning kinds
const (
	WarningGender = "gender"
	WarningGroup  = "group"
)

// Warning flags a pairing that is allowed but does not match a soft constraint of the role
type Warning struct {
	Kind          string `json:"kind"`
	RoleID        int    `json:"role_id"`
	ParticipantID int    `json:"participant_id"`
	Message       string `json:"message"`
}

// pairingWarnings lists the soft-constraint mismatches of casting participant in role
func pairingWarnings(role model.Role, participant model.Participant) []Warning {
	var warnings []Warning

	if role.HasGenderConstraint() && participant.Gender != "" && participant.Gender != role.Gender {
		warnings = append(warnings, Warning{
			Kind:          WarningGender,
			RoleID:        role.ID,
			ParticipantID: participant.ID,
			Message: fmt.Sprintf("role %q expects gender %s, %s is %s",
				role.Name, role.Gender, participant.Name, participant.Gender),
		})
	}

	if isGroupConstraint(role.Group) && isGroupConstraint(participant.Group) && role.Group != participant.Group {
		warnings = append(warnings, Warning{
			Kind:          WarningGroup,
			RoleID:        role.ID,
			ParticipantID: participant.ID,
			Message: fmt.Sprintf("role %q belongs to group %q, %s is in %q",
				role.Name, role.Group, participant.Name, participant.Group),
		})
	}

	return warnings
}

func isGroupConstraint(group string) bool {
	return group != "" && group != AnyGroup
}

// proposalWarnings lists the warnings of every pairing in a mapping, ordered by role ID
func proposalWarnings(session *Session, mapping map[int]int) []Warning {
	warnings := []Warning{}
	for _, roleID := range slices.Sorted(maps.Keys(mapping)) {
		role, ok := session.Role(roleID)
		if !ok {
			continue
		}
		participant, ok := session.Participant(mapping[roleID])
		if !ok {
			continue
		}
		warnings = append(warnings, pairingWarnings(role, participant)...)
	}
	return warnings
}
