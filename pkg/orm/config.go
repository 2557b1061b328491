package orm

import "time"

// DBType 数据库类型
type DBType string

const (
	MySQL      DBType = "mysql"
	PostgreSQL DBType = "postgres"
	SQLite     DBType = "sqlite"
	SQLServer  DBType = "sqlserver"
)

// Config 数据库配置
type Config struct {
	Type DBType `mapstructure:"type"`
	DSN  string `mapstructure:"dsn"`

	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`

	PrepareStmt bool `mapstructure:"prepare_stmt"`

	// LogLevel silent / error / warn / info
	LogLevel      string        `mapstructure:"log_level"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`

	TablePrefix string `mapstructure:"table_prefix"`

	// Tracing 注册 otel 回调
	Tracing bool `mapstructure:"tracing"`

	// Replicas 只读从库 DSN，非空时启用 dbresolver 读写分离
	Replicas []string `mapstructure:"replicas"`
	// ReplicaPolicy random / round_robin
	ReplicaPolicy string `mapstructure:"replica_policy"`
}

// DefaultConfig 返回默认配置（本地 sqlite 文件）
func DefaultConfig() *Config {
	return &Config{
		Type:            SQLite,
		DSN:             "uskup.db",
		MaxIdleConns:    10,
		MaxOpenConns:    50,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		LogLevel:        "warn",
		SlowThreshold:   200 * time.Millisecond,
		ReplicaPolicy:   "random",
	}
}
