package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnmanager/casting/internal/config"
	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/core/model"
	"github.com/gnmanager/casting/pkg/core/services"
	"github.com/gnmanager/casting/pkg/db"
)

func TestParseEventID(t *testing.T) {
	id, err := parseEventID("12")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, arg := range []string{"0", "-3", "abc", ""} {
		_, err := parseEventID(arg)
		assert.Error(t, err, arg)
	}
}

func TestOpenDatabase_Memory(t *testing.T) {
	database, err := OpenDatabase(context.Background(), &config.Config{Store: config.StoreMemory}, zap.NewNop())
	require.NoError(t, err)
	defer database.Close()

	_, isMemory := database.(*db.MemoryStore)
	assert.True(t, isMemory)

	app := &AppContext{Cfg: &config.Config{Store: config.StoreMemory}, Database: database}
	_, err = app.Postgres()
	assert.ErrorContains(t, err, "this command needs store")
}

func TestWriteCasting(t *testing.T) {
	session := casting.NewSession(7,
		[]model.Role{
			{ID: 1, Name: "Chevalier", Type: model.TypePlayer, Gender: model.GenderMale},
			{ID: 2, Name: "Espionne", Type: model.TypePlayer},
		},
		model.GroupParticipants([]model.Participant{
			{ID: 101, Name: "Camille", Type: model.TypePlayer, Gender: model.GenderFemale},
		}),
	)
	controller := casting.NewController(session, casting.Options{})
	_, err := controller.Assign(casting.MainProposal, 1, func() *int { id := 101; return &id }())
	require.NoError(t, err)
	warnings, err := controller.Warnings(casting.MainProposal)
	require.NoError(t, err)
	data := controller.Data()

	var out bytes.Buffer
	writeCasting(&out, &data, warnings)

	assert.Contains(t, out.String(), "provisoire")
	assert.Contains(t, out.String(), colorYellow+"Camille"+colorReset)
	assert.Contains(t, out.String(), "1/2 rôles attribués")
	assert.Contains(t, out.String(), "1 avertissements")
}

func TestToCastingSheet(t *testing.T) {
	published := &services.PublishedCasting{
		EventID:       7,
		Validated:     true,
		ProposalNames: []string{"Option A"},
		Rows: []services.PublishedCastingRow{
			{Role: "Chevalier", Type: "PJ", Group: "Nord", Main: "Alex", Proposals: []string{"Camille"}},
		},
	}

	sheet := toCastingSheet(published)

	assert.Equal(t, 7, sheet.EventID)
	assert.True(t, sheet.Validated)
	assert.Equal(t, []string{"Option A"}, sheet.ProposalNames)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Alex", sheet.Rows[0].Main)
	assert.Equal(t, []string{"Camille"}, sheet.Rows[0].Proposals)
}
