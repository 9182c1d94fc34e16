package casting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnmanager/casting/pkg/core/model"
)

func TestProposalID_JSON(t *testing.T) {
	tests := []struct {
		input   string
		want    ProposalID
		wantErr bool
	}{
		{input: `"main"`, want: MainProposal},
		{input: `3`, want: 3},
		{input: `"12"`, want: 12},
		{input: `0`, wantErr: true},
		{input: `-4`, wantErr: true},
		{input: `"draft"`, wantErr: true},
		{input: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var id ProposalID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProposal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}

	out, err := json.Marshal([]ProposalID{MainProposal, 5})
	require.NoError(t, err)
	assert.JSONEq(t, `["main", 5]`, string(out))
}

func TestParseProposalID(t *testing.T) {
	id, err := ParseProposalID(" main ")
	require.NoError(t, err)
	assert.True(t, id.IsMain())

	id, err = ParseProposalID("8")
	require.NoError(t, err)
	assert.Equal(t, ProposalID(8), id)

	_, err = ParseProposalID("")
	assert.ErrorIs(t, err, ErrInvalidProposal)
	assert.Equal(t, KindInvalidProposal, Kind(err))
}

func TestCastingData_JSONShape(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProposal("A")
	require.NoError(t, err)
	_, err = c.Assign(MainProposal, 1, ptr(101))
	require.NoError(t, err)
	_, err = c.Assign(p.ID, 3, ptr(201))
	require.NoError(t, err)
	require.NoError(t, c.UpdateScore(p.ID, 3, 6))

	out, err := json.Marshal(c.Data())
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.JSONEq(t, `{"main": {"1": 101}, "1": {"3": 201}}`, string(decoded["assignments"]))
	assert.JSONEq(t, `{"1": {"3": 6}}`, string(decoded["scores"]))
	assert.JSONEq(t, `[{"id": 1, "name": "A"}]`, string(decoded["proposals"]))
	assert.JSONEq(t, `false`, string(decoded["is_casting_validated"]))
	assert.Contains(t, decoded, "groups_config")

	var roles []RoleView
	require.NoError(t, json.Unmarshal(decoded["roles"], &roles))
	require.Len(t, roles, 3)
	require.NotNil(t, roles[0].AssignedParticipantID)
	assert.Equal(t, 101, *roles[0].AssignedParticipantID)
	assert.Nil(t, roles[2].AssignedParticipantID)

	var byType map[model.ParticipantType][]ParticipantView
	require.NoError(t, json.Unmarshal(decoded["participants_by_type"], &byType))
	require.Len(t, byType[model.TypePlayer], 2)
	require.NotNil(t, byType[model.TypePlayer][0].RoleID)
	assert.Equal(t, 1, *byType[model.TypePlayer][0].RoleID)
	assert.Nil(t, byType[model.TypeNonPlayer][0].RoleID)
}

func TestCastingData_EmptySessionHasMain(t *testing.T) {
	out, err := json.Marshal(NewCastingData(NewSession(1, nil, nil)))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"roles": [],
		"participants_by_type": {},
		"proposals": [],
		"assignments": {"main": {}},
		"scores": {},
		"is_casting_validated": false,
		"groups_config": {
			"PJ": ["Peu importe"],
			"PNJ": ["Peu importe"],
			"Organisateur": ["général", "coordinateur", "scénariste", "logisticien", "crafteur", "en charge des PNJ"]
		}
	}`, string(out))
}

func TestSessionRoundTrip(t *testing.T) {
	c := scoredController(t, Options{})
	c.SetValidation(true)
	session := c.Session()

	data, err := MarshalSession(session)
	require.NoError(t, err)
	decoded, err := UnmarshalSession(data)
	require.NoError(t, err)

	assert.Equal(t, session, decoded)
}

func TestNormalize_DropsStaleEntries(t *testing.T) {
	session := newTestSession()
	session.Proposals = []Proposal{{ID: 4, Name: "A"}}
	session.NextProposalID = 0
	session.Assignments = map[ProposalID]map[int]int{
		MainProposal: {1: 101, 2: 101, 3: 102, 99: 201},
		4:            {1: 999},
		7:            {1: 101},
	}
	session.Scores = map[ProposalID]map[int]int{
		MainProposal: {1: 5},
		4:            {1: 5, 2: 42, 99: 3},
		8:            {1: 1},
	}

	session.Normalize()

	// Role 2 loses 101 to role 1, role 3 rejects a PJ, role 99 is gone
	assert.Equal(t, map[ProposalID]map[int]int{
		MainProposal: {1: 101},
		4:            {},
	}, session.Assignments)
	assert.Equal(t, map[ProposalID]map[int]int{4: {1: 5}}, session.Scores)
	assert.Equal(t, 5, session.NextProposalID)
}

func TestNormalize_KeepsOneEntryPerParticipantID(t *testing.T) {
	session := newTestSession()
	session.Participants[model.TypeNonPlayer] = append(session.Participants[model.TypeNonPlayer],
		model.Participant{ID: 101, Name: "Alex bis", Type: model.TypeNonPlayer},
		model.Participant{ID: 301, Name: "Égaré", Type: model.TypePlayer},
	)
	session.Assignments[MainProposal] = map[int]int{3: 101}

	session.Normalize()

	// PJ sorts before PNJ, so the PJ entry of 101 wins; 301 sits in the wrong bucket
	assert.Equal(t, []model.Participant{
		{ID: 201, Name: "Dominique", Type: model.TypeNonPlayer, Gender: model.GenderOther},
	}, session.Participants[model.TypeNonPlayer])
	assert.Equal(t, 3, session.Participants.Count())

	participant, ok := session.Participant(101)
	require.True(t, ok)
	assert.Equal(t, "Alex", participant.Name)
	assert.Empty(t, session.Assignments[MainProposal])
}

func TestClone_IsDeep(t *testing.T) {
	c := scoredController(t, Options{})
	clone := c.Session().Clone()

	clone.Assignments[1][1] = 102
	clone.Scores[1][1] = 0
	clone.Proposals[0].Name = "changed"

	assert.Equal(t, 101, c.Session().Assignments[1][1])
	assert.Equal(t, 8, c.Session().Scores[1][1])
	assert.Equal(t, "A", c.Session().Proposals[0].Name)
}
