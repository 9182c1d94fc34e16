package allocator

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnmanager/casting/pkg/core/model"
)

// weightTable is a Scorer backed by a role -> participant -> weight map
type weightTable map[int]map[int]int

func (w weightTable) Weight(roleID, participantID int) int {
	return w[roleID][participantID]
}

func pj(id int) model.Participant {
	return model.Participant{ID: id, Name: "PJ", Type: model.TypePlayer}
}

func pnj(id int) model.Participant {
	return model.Participant{ID: id, Name: "PNJ", Type: model.TypeNonPlayer}
}

func TestAllocate_UniqueOptimum(t *testing.T) {
	// R1: P1=8, P2=3 / R2: P1=5, P2=9 -> {R1:P1, R2:P2} = 17 beats 8
	config := AllocationConfig{
		Roles: []model.Role{
			{ID: 1, Name: "R1", Type: model.TypePlayer},
			{ID: 2, Name: "R2", Type: model.TypePlayer},
		},
		Participants: model.GroupParticipants([]model.Participant{pj(101), pj(102)}),
		Scorer: weightTable{
			1: {101: 8, 102: 3},
			2: {101: 5, 102: 9},
		},
	}

	outcome := Allocate(config)

	assert.Equal(t, map[int]int{1: 101, 2: 102}, outcome.Assignments)
	assert.Equal(t, 2, outcome.AssignedCount)
	assert.Equal(t, 2, outcome.TotalRoles)
	assert.Equal(t, 17, outcome.TotalScore)
}

func TestAllocate_GreedyWouldBeSuboptimal(t *testing.T) {
	// Greedy picks R1:P1 (10) and leaves R2:P2 (1) = 11; optimum is 9 + 9 = 18
	config := AllocationConfig{
		Roles: []model.Role{
			{ID: 1, Type: model.TypePlayer},
			{ID: 2, Type: model.TypePlayer},
		},
		Participants: model.GroupParticipants([]model.Participant{pj(101), pj(102)}),
		Scorer: weightTable{
			1: {101: 10, 102: 9},
			2: {101: 9, 102: 1},
		},
	}

	outcome := Allocate(config)

	assert.Equal(t, map[int]int{1: 102, 2: 101}, outcome.Assignments)
	assert.Equal(t, 18, outcome.TotalScore)
}

func TestAllocate_DecomposesByType(t *testing.T) {
	// A PNJ participant must never fill a PJ role even if its weight is higher
	config := AllocationConfig{
		Roles: []model.Role{
			{ID: 1, Type: model.TypePlayer},
			{ID: 2, Type: model.TypeNonPlayer},
		},
		Participants: model.GroupParticipants([]model.Participant{pj(101), pnj(201)}),
		Scorer: weightTable{
			1: {101: 1, 201: 10},
			2: {101: 10, 201: 2},
		},
	}

	outcome := Allocate(config)

	assert.Equal(t, map[int]int{1: 101, 2: 201}, outcome.Assignments)
	assert.Equal(t, 3, outcome.TotalScore)
	require.Len(t, outcome.Buckets, 2)
	assert.Equal(t, model.TypePlayer, outcome.Buckets[0].Type)
	assert.Equal(t, model.TypeNonPlayer, outcome.Buckets[1].Type)
}

func TestAllocate_RolesWithoutEligibleParticipants(t *testing.T) {
	config := AllocationConfig{
		Roles: []model.Role{
			{ID: 1, Type: model.TypePlayer},
			{ID: 2, Type: model.TypeOrganizer},
		},
		Participants: model.GroupParticipants([]model.Participant{pj(101)}),
		Scorer:       weightTable{1: {101: 4}},
	}

	outcome := Allocate(config)

	assert.Equal(t, map[int]int{1: 101}, outcome.Assignments)
	assert.Equal(t, 1, outcome.AssignedCount)
	assert.Equal(t, 2, outcome.TotalRoles, "unfillable roles still count towards the total")
}

func TestAllocate_MoreParticipantsThanRoles(t *testing.T) {
	config := AllocationConfig{
		Roles:        []model.Role{{ID: 1, Type: model.TypePlayer}},
		Participants: model.GroupParticipants([]model.Participant{pj(101), pj(102), pj(103)}),
		Scorer:       weightTable{1: {101: 2, 102: 7, 103: 5}},
	}

	outcome := Allocate(config)

	assert.Equal(t, map[int]int{1: 102}, outcome.Assignments)
	assert.Equal(t, 7, outcome.TotalScore)
}

func TestAllocate_MoreRolesThanParticipants(t *testing.T) {
	config := AllocationConfig{
		Roles: []model.Role{
			{ID: 1, Type: model.TypePlayer},
			{ID: 2, Type: model.TypePlayer},
			{ID: 3, Type: model.TypePlayer},
		},
		Participants: model.GroupParticipants([]model.Participant{pj(101)}),
		Scorer:       weightTable{1: {101: 2}, 2: {101: 6}, 3: {101: 4}},
	}

	outcome := Allocate(config)

	assert.Equal(t, map[int]int{2: 101}, outcome.Assignments)
	assert.Equal(t, 1, outcome.AssignedCount)
	assert.Equal(t, 3, outcome.TotalRoles)
}

func TestAllocate_UnscoredPairsFilledByDefault(t *testing.T) {
	config := AllocationConfig{
		Roles: []model.Role{
			{ID: 1, Type: model.TypePlayer},
			{ID: 2, Type: model.TypePlayer},
		},
		Participants: model.GroupParticipants([]model.Participant{pj(101), pj(102)}),
		Scorer:       weightTable{1: {101: 5}},
	}

	outcome := Allocate(config)

	assert.Equal(t, map[int]int{1: 101, 2: 102}, outcome.Assignments)
	assert.Equal(t, 5, outcome.TotalScore)
}

func TestAllocate_DropUnscoredPairs(t *testing.T) {
	config := AllocationConfig{
		Roles: []model.Role{
			{ID: 1, Type: model.TypePlayer},
			{ID: 2, Type: model.TypePlayer},
		},
		Participants:      model.GroupParticipants([]model.Participant{pj(101), pj(102)}),
		Scorer:            weightTable{1: {101: 5}},
		DropUnscoredPairs: true,
	}

	outcome := Allocate(config)

	assert.Equal(t, map[int]int{1: 101}, outcome.Assignments)
	assert.Equal(t, 1, outcome.AssignedCount)
	assert.Equal(t, 5, outcome.TotalScore)
}

func TestAllocate_EmptyInput(t *testing.T) {
	outcome := Allocate(AllocationConfig{})

	assert.Empty(t, outcome.Assignments)
	assert.Equal(t, 0, outcome.AssignedCount)
	assert.Equal(t, 0, outcome.TotalRoles)
	assert.Empty(t, outcome.Buckets)
}

func TestAllocate_Deterministic(t *testing.T) {
	// Every weight ties, so any perfect matching is optimal; repeated runs must agree
	participants := []model.Participant{pj(101), pj(102), pj(103)}
	roles := []model.Role{
		{ID: 1, Type: model.TypePlayer},
		{ID: 2, Type: model.TypePlayer},
		{ID: 3, Type: model.TypePlayer},
	}
	scorer := ScorerFunc(func(int, int) int { return 3 })

	first := Allocate(AllocationConfig{Roles: roles, Participants: model.GroupParticipants(participants), Scorer: scorer})
	for range 5 {
		again := Allocate(AllocationConfig{Roles: roles, Participants: model.GroupParticipants(participants), Scorer: scorer})
		assert.Equal(t, first.Assignments, again.Assignments)
		assert.Equal(t, first.TotalScore, again.TotalScore)
	}
	assert.Equal(t, 9, first.TotalScore)
}

func TestAllocate_NoParticipantHoldsTwoRoles(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	roles := make([]model.Role, 0, 8)
	for i := 1; i <= 8; i++ {
		roles = append(roles, model.Role{ID: i, Type: model.TypePlayer})
	}
	participants := make([]model.Participant, 0, 5)
	for i := 1; i <= 5; i++ {
		participants = append(participants, pj(100+i))
	}
	weights := weightTable{}
	for _, role := range roles {
		weights[role.ID] = map[int]int{}
		for _, p := range participants {
			weights[role.ID][p.ID] = rng.IntN(11)
		}
	}

	outcome := Allocate(AllocationConfig{Roles: roles, Participants: model.GroupParticipants(participants), Scorer: weights})

	seen := map[int]bool{}
	for _, participantID := range outcome.Assignments {
		assert.False(t, seen[participantID], "participant %d assigned twice", participantID)
		seen[participantID] = true
	}
	assert.Equal(t, 5, outcome.AssignedCount)
}

func TestMaxWeightAssignment_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1337))

	for trial := 0; trial < 200; trial++ {
		rows := 1 + rng.IntN(6)
		cols := 1 + rng.IntN(6)
		weights := make([][]int, rows)
		for i := range weights {
			weights[i] = make([]int, cols)
			for j := range weights[i] {
				weights[i][j] = rng.IntN(11)
			}
		}

		matched := maxWeightAssignment(weights, cols)
		require.Len(t, matched, rows)

		got := 0
		usedCols := map[int]bool{}
		realPairs := 0
		for i, j := range matched {
			if j < 0 {
				continue
			}
			require.False(t, usedCols[j], "trial %d: column %d used twice", trial, j)
			usedCols[j] = true
			got += weights[i][j]
			realPairs++
		}

		assert.Equal(t, bruteForceBest(weights, cols), got, "trial %d: %v", trial, weights)
		assert.Equal(t, min(rows, cols), realPairs, "trial %d: every possible pair should be used", trial)
	}
}

func TestMinCostAssignment_Classic(t *testing.T) {
	cost := [][]int{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	}

	assignment := minCostAssignment(cost)

	total := 0
	for i, j := range assignment {
		total += cost[i][j]
	}
	assert.Equal(t, 5, total)
	assert.ElementsMatch(t, []int{0, 1, 2}, slices.Clone(assignment))
}

func TestEligible_FiltersByTypeAndIsRestartable(t *testing.T) {
	grouped := model.GroupParticipants([]model.Participant{pj(1), pnj(2), pj(3)})
	role := model.Role{ID: 10, Type: model.TypePlayer}

	seq := Eligible(role, grouped)

	var first, second []int
	for p := range seq {
		first = append(first, p.ID)
	}
	for p := range seq {
		second = append(second, p.ID)
	}
	assert.Equal(t, []int{1, 3}, first)
	assert.Equal(t, first, second)
}

func TestEligible_MissingBucket(t *testing.T) {
	grouped := model.GroupParticipants([]model.Participant{pj(1)})
	role := model.Role{ID: 10, Type: model.TypeOrganizer}

	assert.Empty(t, slices.Collect(Eligible(role, grouped)))
}

// bruteForceBest enumerates every injective mapping of the smaller side
func bruteForceBest(weights [][]int, cols int) int {
	rows := len(weights)
	best := 0
	usedCols := make([]bool, cols)

	var walk func(row, acc int)
	walk = func(row, acc int) {
		if row == rows {
			best = max(best, acc)
			return
		}
		// Leave the row unmatched only if columns would run out otherwise
		if rows-row > countFree(usedCols) {
			walk(row+1, acc)
		}
		for j := 0; j < cols; j++ {
			if usedCols[j] {
				continue
			}
			usedCols[j] = true
			walk(row+1, acc+weights[row][j])
			usedCols[j] = false
		}
	}
	walk(0, 0)
	return best
}

func countFree(used []bool) int {
	free := 0
	for _, u := range used {
		if !u {
			free++
		}
	}
	return free
}
