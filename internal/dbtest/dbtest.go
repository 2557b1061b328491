// Package dbtest 测试用内存数据库
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/pkg/logger"
	"github.com/tokmz/uskup/pkg/orm"
)

// New 为每个测试创建独立的 sqlite 内存库并完成迁移
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := orm.DefaultConfig()
	cfg.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	cfg.MaxOpenConns = 1
	cfg.LogLevel = "silent"

	db, err := orm.New(cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = orm.Close(db) })

	require.NoError(t, db.AutoMigrate(model.Models()...))
	return db
}
