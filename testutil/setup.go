package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kasuganosora/botbrain/config"
	dbadapter "github.com/kasuganosora/botbrain/db"
	"github.com/kasuganosora/botbrain/message"
	"github.com/kasuganosora/botbrain/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupTestDB creates a private in-memory SQLite DB and runs AutoMigrate.
// It requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestBus creates an in-process bus (no Redis required).
func SetupTestBus(t *testing.T) message.PubSub {
	t.Helper()
	ps, err := message.NewPubSub(message.BusConfig{LocalBuf: 64})
	require.NoError(t, err, "SetupTestBus: NewPubSub")
	return ps
}

// Logger returns a development logger for tests.
func Logger() *zap.Logger {
	l, _ := zap.NewDevelopment()
	return l
}
