package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/botbrain/api/rest"
	"github.com/kasuganosora/botbrain/config"
	dbadapter "github.com/kasuganosora/botbrain/db"
	"github.com/kasuganosora/botbrain/game/world"
	"github.com/kasuganosora/botbrain/message"
	mw "github.com/kasuganosora/botbrain/middleware"
	"github.com/kasuganosora/botbrain/model"
	"github.com/kasuganosora/botbrain/resource"
	"github.com/kasuganosora/botbrain/scheduler"
	"github.com/kasuganosora/botbrain/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const limiterIdle = 10 * time.Minute

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	var db *gorm.DB
	if cfg.Telemetry.Enabled {
		db, err = dbadapter.Open(cfg.Database)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		if err := model.AutoMigrate(db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		logger.Info("telemetry DB initialized", zap.String("mode", cfg.Database.Mode))
	}

	// ---- Bus ----
	bus, err := message.NewPubSub(message.BusConfig(cfg.Bus))
	if err != nil {
		log.Fatalf("bus: %v", err)
	}

	// ---- Definitions ----
	loader := resource.NewLoader(cfg.Simulation.DefinitionsDir)
	defs, err := loader.Load()
	if err != nil {
		log.Fatalf("definitions: %v", err)
	}
	if err := resource.Validate(defs); err != nil {
		log.Fatalf("definitions: %v", err)
	}
	logger.Info("definitions loaded",
		zap.String("dir", cfg.Simulation.DefinitionsDir),
		zap.Int("archetypes", len(defs.Archetypes)),
		zap.Int("clips", len(defs.Clips)))

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Arena ----
	arena, err := world.NewArena(defs, cfg.Simulation.Level, world.Options{Seed: cfg.Simulation.Seed}, logger)
	if err != nil {
		log.Fatalf("arena: %v", err)
	}
	pub := message.NewPublisher(bus, cfg.Bus.Prefix, arena.ID, logger)
	arena.SetPublisher(pub)

	// ---- Telemetry ----
	var tel *telemetry.Service
	if db != nil {
		tel = telemetry.New(db, telemetry.Options{
			BatchSize:     cfg.Telemetry.BatchSize,
			FlushInterval: cfg.Telemetry.FlushInterval,
			QueueSize:     cfg.Telemetry.QueueSize,
		}, logger)
		if err := tel.Follow(ctx, bus, pub.Channels()...); err != nil {
			log.Fatalf("telemetry: %v", err)
		}
	}

	if cfg.Simulation.HotReload {
		w, err := resource.NewWatcher(loader, sched, 0, arena.Reload, logger)
		if err != nil {
			logger.Warn("definition hot reload unavailable", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	spawned := arena.SpawnLevel()
	logger.Info("level spawned", zap.String("level", cfg.Simulation.Level), zap.Int("actors", spawned))

	// ---- Simulation ----
	sched.AddLoop(apirest.LoopName, cfg.Simulation.TickInterval(), func(dt float64) {
		arena.Step(ctx, dt)
	})
	limiter := mw.NewLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)
	sched.AddTicker("ratelimit_sweep", limiterIdle/2, func() {
		if n := limiter.Sweep(limiterIdle); n > 0 {
			logger.Debug("rate limiter swept", zap.Int("clients", n))
		}
	})
	if cfg.Simulation.StatsInterval > 0 {
		sched.AddTicker("arena_stats", cfg.Simulation.StatsInterval, func() {
			s := arena.Stats()
			fields := []zap.Field{
				zap.Uint64("frames", s.Frames),
				zap.Int("bots", s.Bots),
				zap.Int("players", s.Players),
				zap.Int("kills", s.Kills),
				zap.Int("shots", s.Shots),
			}
			if ls, ok := sched.LoopStats(apirest.LoopName); ok {
				fields = append(fields, zap.Uint64("skipped", ls.Skipped), zap.Uint64("panics", ls.Panics))
			}
			logger.Info("arena stats", fields...)
		})
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(mw.TraceID(), mw.AccessLog(logger, "/health"), mw.Recovery(logger))
	r.Use(limiter.Handler())
	apirest.NewInspectorHandler(arena, db, sched, logger).Register(r, mw.AdminKey(cfg.Server.AdminKey))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("inspector listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("inspector stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("inspector shutdown", zap.Error(err))
	}
	sched.Stop()

	if tel != nil {
		s := arena.Stats()
		if err := tel.Summarize(&model.MatchSummary{
			MatchID:   arena.ID,
			Frames:    s.Frames,
			Bots:      s.Bots,
			Kills:     s.Kills,
			Shots:     s.Shots,
			StartedAt: s.Started,
			EndedAt:   time.Now(),
		}); err != nil {
			logger.Warn("match summary not written", zap.Error(err))
		}
		tel.Stop(shutdownCtx)
		logger.Info("telemetry flushed", zap.Int64("written", tel.Written()), zap.Int64("dropped", tel.Dropped()))
	}
}
