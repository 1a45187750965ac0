// Package rest serves the read-mostly inspector API of a running arena.
package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/scene"
	"github.com/kasuganosora/botbrain/game/world"
	"github.com/kasuganosora/botbrain/model"
	"github.com/kasuganosora/botbrain/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Arena is the part of world.Arena the inspector reads and drives.
type Arena interface {
	Snapshot() world.Snapshot
	Bot(id int) (world.BotSnapshot, bool)
	Stats() world.Stats
	SpawnBot(archetype string, pos mgl64.Vec3, yaw float64) (scene.Handle, error)
}

// LoopName is the scheduler loop that steps the arena.
const LoopName = "arena"

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// InspectorHandler exposes arena state and recorded combat events.
type InspectorHandler struct {
	arena  Arena
	db     *gorm.DB
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewInspectorHandler creates an InspectorHandler. db and sched may be nil;
// the routes needing them then answer 503.
func NewInspectorHandler(arena Arena, db *gorm.DB, sched *scheduler.Scheduler, logger *zap.Logger) *InspectorHandler {
	return &InspectorHandler{arena: arena, db: db, sched: sched, logger: logger}
}

// Health reports liveness and the current frame.
// GET /health
func (h *InspectorHandler) Health(c *gin.Context) {
	s := h.arena.Stats()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "frames": s.Frames})
}

// Arena returns a full snapshot.
// GET /api/arena
func (h *InspectorHandler) Arena(c *gin.Context) {
	c.JSON(http.StatusOK, h.arena.Snapshot())
}

// Stats returns the match totals and the arena loop counters.
// GET /api/stats
func (h *InspectorHandler) Stats(c *gin.Context) {
	resp := gin.H{"stats": h.arena.Stats()}
	if h.sched != nil {
		if ls, ok := h.sched.LoopStats(LoopName); ok {
			resp["loop"] = gin.H{"steps": ls.Steps, "skipped": ls.Skipped, "panics": ls.Panics}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListBots returns every bot.
// GET /api/bots
func (h *InspectorHandler) ListBots(c *gin.Context) {
	bots := h.arena.Snapshot().Bots
	c.JSON(http.StatusOK, gin.H{"bots": bots, "count": len(bots)})
}

// GetBot returns one bot.
// GET /api/bots/:id
func (h *InspectorHandler) GetBot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	b, ok := h.arena.Bot(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "bot not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// Events lists recorded combat events, newest first.
// GET /api/events?kind=damage_actor&limit=50
func (h *InspectorHandler) Events(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "telemetry disabled"})
		return
	}
	limit := defaultEventLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= maxEventLimit {
		limit = l
	}
	q := h.db.WithContext(c.Request.Context()).Model(&model.CombatEvent{})
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if match := c.Query("match"); match != "" {
		q = q.Where("match_id = ?", match)
	}
	var events []model.CombatEvent
	if err := q.Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		h.logger.Error("events query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// SpawnRequest is the body of SpawnBot.
type SpawnRequest struct {
	Archetype string     `json:"archetype" binding:"required"`
	Position  [3]float64 `json:"position"`
	Yaw       float64    `json:"yaw"`
}

// SpawnBot places a bot in the running arena.
// POST /api/admin/bots
func (h *InspectorHandler) SpawnBot(c *gin.Context) {
	var req SpawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	handle, err := h.arena.SpawnBot(req.Archetype, mgl64.Vec3(req.Position), req.Yaw)
	if errors.Is(err, world.ErrUnknownArchetype) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("bot spawned via inspector", zap.String("archetype", req.Archetype), zap.Int("id", int(handle)))
	c.JSON(http.StatusCreated, gin.H{"id": int(handle)})
}

// ListTasks returns the scheduler task names.
// GET /api/admin/scheduler
func (h *InspectorHandler) ListTasks(c *gin.Context) {
	if h.sched == nil {
		c.JSON(http.StatusOK, gin.H{"tasks": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.List()})
}

// Register mounts the inspector routes. Mutating routes sit behind admin.
func (h *InspectorHandler) Register(r gin.IRouter, admin gin.HandlerFunc) {
	r.GET("/health", h.Health)
	api := r.Group("/api")
	api.GET("/arena", h.Arena)
	api.GET("/stats", h.Stats)
	api.GET("/bots", h.ListBots)
	api.GET("/bots/:id", h.GetBot)
	api.GET("/events", h.Events)

	adminG := api.Group("/admin", admin)
	adminG.POST("/bots", h.SpawnBot)
	adminG.GET("/scheduler", h.ListTasks)
}
