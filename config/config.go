package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Bus        BusConfig        `mapstructure:"bus"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"` // empty disables the admin endpoints
}

type SimulationConfig struct {
	TickRate       int           `mapstructure:"tick_rate"` // frames per second
	DefinitionsDir string        `mapstructure:"definitions_dir"`
	Level          string        `mapstructure:"level"`
	HotReload      bool          `mapstructure:"hot_reload"`
	StatsInterval  time.Duration `mapstructure:"stats_interval"`
	Seed           int64         `mapstructure:"seed"` // 0 picks a time based seed
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type BusConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	LocalBuf      int    `mapstructure:"local_buf"`
	Prefix        string `mapstructure:"prefix"`
}

type TelemetryConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	QueueSize     int           `mapstructure:"queue_size"`
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// TickInterval is the fixed simulation step.
func (c SimulationConfig) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOTBRAIN")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("simulation.tick_rate", 60)
	v.SetDefault("simulation.definitions_dir", "./data")
	v.SetDefault("simulation.level", "arena")
	v.SetDefault("simulation.hot_reload", false)
	v.SetDefault("simulation.stats_interval", "10s")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/telemetry.db")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("bus.local_buf", 256)
	v.SetDefault("bus.prefix", "botbrain")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.batch_size", 100)
	v.SetDefault("telemetry.flush_interval", "2s")
	v.SetDefault("telemetry.queue_size", 1024)
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Simulation.TickRate <= 0 || cfg.Simulation.TickRate > 1000 {
		return nil, fmt.Errorf("config: simulation.tick_rate %d out of range", cfg.Simulation.TickRate)
	}
	return cfg, nil
}
