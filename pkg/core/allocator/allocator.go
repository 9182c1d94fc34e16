package allocator

import (
	"maps"
	"slices"

	"github.com/gnmanager/casting/pkg/core/model"
)

// Scorer supplies the weight of pairing a role with a participant.
// Weights are non-negative; absent pairs weigh 0.
type Scorer interface {
	Weight(roleID, participantID int) int
}

// ScorerFunc adapts a plain function to the Scorer interface
type ScorerFunc func(roleID, participantID int) int

func (f ScorerFunc) Weight(roleID, participantID int) int {
	return f(roleID, participantID)
}

// AllocationConfig contains the inputs of one solver run
type AllocationConfig struct {
	// Roles to fill, in display order
	Roles []model.Role

	// Participants grouped by type; order within a bucket is preserved
	Participants model.ParticipantsByType

	// Scorer gives the edge weight of each compatible (role, participant) pair
	Scorer Scorer

	// DropUnscoredPairs leaves a role unassigned rather than filling it with a
	// participant whose weight for it is 0. The total score is unaffected.
	DropUnscoredPairs bool
}

// BucketOutcome summarises the matching of a single participant type
type BucketOutcome struct {
	Type             model.ParticipantType
	RoleCount        int
	ParticipantCount int
	AssignedCount    int
	Score            int
}

// AllocationOutcome is the result of a solver run
type AllocationOutcome struct {
	// Assignments maps role ID to participant ID for every filled role
	Assignments map[int]int

	// AssignedCount is the number of filled roles
	AssignedCount int

	// TotalRoles is the number of roles given to the solver, filled or not
	TotalRoles int

	// TotalScore is the sum of weights of all assignments
	TotalScore int

	// Buckets has one entry per participant type that has roles, in type order
	Buckets []BucketOutcome
}

// Allocate computes a role -> participant mapping of maximum total weight.
//
// Roles can only go to participants of the same type, so the bipartite graph
// splits into one independent component per type. Each component is solved on
// its own with the Hungarian algorithm and the results are merged. Roles
// without any eligible participant stay unassigned; surplus participants stay
// free. Allocate never fails.
func Allocate(config AllocationConfig) *AllocationOutcome {
	outcome := &AllocationOutcome{
		Assignments: make(map[int]int),
		TotalRoles:  len(config.Roles),
		Buckets:     []BucketOutcome{},
	}

	scorer := config.Scorer
	if scorer == nil {
		scorer = ScorerFunc(func(int, int) int { return 0 })
	}

	// Group roles by required type, keeping input order inside each bucket
	rolesByType := make(map[model.ParticipantType][]model.Role)
	for _, role := range config.Roles {
		rolesByType[role.Type] = append(rolesByType[role.Type], role)
	}

	for _, participantType := range slices.Sorted(maps.Keys(rolesByType)) {
		bucket := allocateBucket(participantType, rolesByType[participantType], config, scorer, outcome.Assignments)
		outcome.AssignedCount += bucket.AssignedCount
		outcome.TotalScore += bucket.Score
		outcome.Buckets = append(outcome.Buckets, bucket)
	}

	return outcome
}

// allocateBucket solves the assignment problem for one participant type and
// records the chosen pairs into assignments
func allocateBucket(
	participantType model.ParticipantType,
	roles []model.Role,
	config AllocationConfig,
	scorer Scorer,
	assignments map[int]int,
) BucketOutcome {
	participants := slices.Collect(Eligible(roles[0], config.Participants))

	bucket := BucketOutcome{
		Type:             participantType,
		RoleCount:        len(roles),
		ParticipantCount: len(participants),
	}
	if len(participants) == 0 {
		return bucket
	}

	weights := make([][]int, len(roles))
	for i, role := range roles {
		weights[i] = make([]int, len(participants))
		for j, participant := range participants {
			weights[i][j] = max(0, scorer.Weight(role.ID, participant.ID))
		}
	}

	matched := maxWeightAssignment(weights, len(participants))
	for i, j := range matched {
		if j < 0 {
			continue
		}
		if config.DropUnscoredPairs && weights[i][j] == 0 {
			continue
		}
		assignments[roles[i].ID] = participants[j].ID
		bucket.AssignedCount++
		bucket.Score += weights[i][j]
	}

	return bucket
}
