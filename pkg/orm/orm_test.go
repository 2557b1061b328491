package orm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tokmz/uskup/pkg/logger"
)

type widget struct {
	ID   uint
	Name string
}

func TestNew_SQLiteWithTracing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = "file::memory:?cache=shared"
	cfg.Tracing = true
	cfg.MaxOpenConns = 1

	db, err := New(cfg, logger.Nop())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Ping(context.Background(), db))
	require.NoError(t, db.AutoMigrate(&widget{}))
	require.NoError(t, db.WithContext(context.Background()).Create(&widget{Name: "a"}).Error)

	var got widget
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "a", got.Name)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&Config{Type: SQLite}, nil)
	assert.Error(t, err)

	_, err = New(&Config{Type: "oracle", DSN: "x"}, nil)
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, parseLogLevel("SILENT"))
	assert.Equal(t, gormlogger.Info, parseLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, parseLogLevel(""))
}
