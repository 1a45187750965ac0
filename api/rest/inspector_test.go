package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/api/rest"
	"github.com/kasuganosora/botbrain/game/world"
	mw "github.com/kasuganosora/botbrain/middleware"
	"github.com/kasuganosora/botbrain/model"
	"github.com/kasuganosora/botbrain/resource"
	"github.com/kasuganosora/botbrain/scheduler"
	"github.com/kasuganosora/botbrain/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

const adminKey = "test-key"

type fixture struct {
	router *gin.Engine
	arena  *world.Arena
	db     *gorm.DB
	zombie int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	defs, err := resource.NewLoader("../../data").Load()
	require.NoError(t, err)
	arena, err := world.NewArena(defs, "arena", world.Options{Seed: 3}, zap.NewNop())
	require.NoError(t, err)
	z, err := arena.SpawnBot("zombie", mgl64.Vec3{10, 0, 5}, 0)
	require.NoError(t, err)
	arena.SpawnPlayer("bob", mgl64.Vec3{-10, 0, -10}, 0)

	db := testutil.SetupTestDB(t)
	sched := scheduler.New(zap.NewNop())
	t.Cleanup(sched.Stop)
	sched.AddTicker("noop", time.Hour, func() {})

	h := rest.NewInspectorHandler(arena, db, sched, zap.NewNop())
	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(zap.NewNop()))
	h.Register(r, mw.AdminKey(adminKey))
	return &fixture{router: r, arena: arena, db: db, zombie: int(z)}
}

func (f *fixture) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestListBots(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/bots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Bots  []world.BotSnapshot `json:"bots"`
		Count int                 `json:"count"`
	}
	decode(t, w, &body)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, f.zombie, body.Bots[0].ID)
	assert.Equal(t, "zombie", body.Bots[0].Archetype)
	assert.Equal(t, "idle", body.Bots[0].Lower)
}

func TestGetBot(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/bots/"+strconv.Itoa(f.zombie), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var b world.BotSnapshot
	decode(t, w, &b)
	assert.Equal(t, 120.0, b.Health)
	assert.InDelta(t, 10.0, b.Position.X(), 1e-9)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/bots/999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/bots/abc", "", nil).Code)
}

func TestArenaAndStats(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/arena", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap world.Snapshot
	decode(t, w, &snap)
	assert.Equal(t, f.arena.ID, snap.Match)
	assert.Equal(t, "arena", snap.Level)
	assert.Len(t, snap.Players, 1)

	w = f.do(http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Stats world.Stats `json:"stats"`
	}
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.Stats.Bots)
	assert.Equal(t, 1, stats.Stats.Players)
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	require.NoError(t, f.db.Create(&[]model.CombatEvent{
		{EventID: "e1", MatchID: "m1", Frame: 1, Kind: "play_sound", SentAt: now},
		{EventID: "e2", MatchID: "m1", Frame: 2, Kind: "damage_actor", Actor: 4, SentAt: now},
		{EventID: "e3", MatchID: "m2", Frame: 3, Kind: "damage_actor", Actor: 5, SentAt: now},
	}).Error)

	var body struct {
		Events []model.CombatEvent `json:"events"`
		Count  int                 `json:"count"`
	}
	w := f.do(http.MethodGet, "/api/events?kind=damage_actor", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "e3", body.Events[0].EventID, "newest first")

	w = f.do(http.MethodGet, "/api/events?match=m1&limit=1", "", nil)
	decode(t, w, &body)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "e2", body.Events[0].EventID)
}

func TestEvents_NoDatabase(t *testing.T) {
	f := newFixture(t)
	h := rest.NewInspectorHandler(f.arena, nil, nil, zap.NewNop())
	r := gin.New()
	h.Register(r, mw.AdminKey(adminKey))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSpawnBot(t *testing.T) {
	f := newFixture(t)
	key := map[string]string{mw.AdminKeyHeader: adminKey}

	body := `{"archetype":"soldier","position":[8,0,8],"yaw":180}`
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/admin/bots", body, nil).Code)

	w := f.do(http.MethodPost, "/api/admin/bots", body, key)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int `json:"id"`
	}
	decode(t, w, &created)
	b, ok := f.arena.Bot(created.ID)
	require.True(t, ok)
	assert.Equal(t, "soldier", b.Archetype)

	w = f.do(http.MethodPost, "/api/admin/bots", `{"archetype":"dragon"}`, key)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, "/api/admin/bots", `{}`, key)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 2, f.arena.Stats().Bots)
}

func TestListTasks(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/admin/scheduler", "", map[string]string{mw.AdminKeyHeader: adminKey})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Tasks []string `json:"tasks"`
	}
	decode(t, w, &body)
	assert.Equal(t, []string{"noop"}, body.Tasks)
}
