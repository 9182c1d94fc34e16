package allocator

import (
	"iter"

	"github.com/gnmanager/casting/pkg/core/model"
)

// Compatible reports whether a participant may hold a role at all.
// Only the participant type is binding; gender and sub-group are advisory.
func Compatible(role model.Role, participant model.Participant) bool {
	return role.Type == participant.Type
}

// Eligible yields every participant whose type matches the role's required type,
// in the order they appear in the type bucket. The sequence can be ranged over
// any number of times.
func Eligible(role model.Role, participantsByType model.ParticipantsByType) iter.Seq[model.Participant] {
	return func(yield func(model.Participant) bool) {
		for _, participant := range participantsByType[role.Type] {
			if !Compatible(role, participant) {
				continue
			}
			if !yield(participant) {
				return
			}
		}
	}
}
