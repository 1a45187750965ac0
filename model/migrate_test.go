package model_test

import (
	"testing"
	"time"

	"github.com/kasuganosora/botbrain/model"
	"github.com/kasuganosora/botbrain/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	ev := &model.CombatEvent{
		EventID: "0b6f4c1e-5b7a-4a52-8d0e-0f0c8e7b0a11",
		MatchID: "match-1",
		Frame:   12,
		Kind:    "damage_actor",
		Actor:   3,
		Payload: datatypes.JSON(`{"amount":10}`),
		SentAt:  time.Now(),
	}
	require.NoError(t, db.Create(ev).Error)
	assert.Greater(t, ev.ID, int64(0))

	var found model.CombatEvent
	require.NoError(t, db.Where("match_id = ? AND kind = ?", "match-1", "damage_actor").First(&found).Error)
	assert.Equal(t, uint64(12), found.Frame)
	assert.JSONEq(t, `{"amount":10}`, string(found.Payload))

	sum := &model.MatchSummary{MatchID: "match-1", Frames: 600, Bots: 4, Kills: 1, StartedAt: time.Now()}
	require.NoError(t, db.Create(sum).Error)
	assert.Greater(t, sum.ID, int64(0))
}
