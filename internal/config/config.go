package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Cron   CronConfig   `mapstructure:"cron"`
	TMDB   TMDBConfig   `mapstructure:"tmdb"`
	Seed   SeedConfig   `mapstructure:"seed"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SeedSync string `mapstructure:"seed_sync"`
}

type TMDBConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	BearerToken string        `mapstructure:"bearer_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SeedConfig struct {
	StartPage  int           `mapstructure:"start_page"`
	MaxPages   int           `mapstructure:"max_pages"`
	Resume     bool          `mapstructure:"resume"`
	Workers    int           `mapstructure:"workers"`
	Retries    int           `mapstructure:"retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
	PageDelay  time.Duration `mapstructure:"page_delay"`
	SeedGenres bool          `mapstructure:"seed_genres"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.seed_sync", "@every 6h")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.timeout", "15s")
	v.SetDefault("seed.start_page", 1)
	v.SetDefault("seed.max_pages", 5)
	v.SetDefault("seed.resume", true)
	v.SetDefault("seed.workers", 4)
	v.SetDefault("seed.retries", 2)
	v.SetDefault("seed.backoff", "400ms")
	v.SetDefault("seed.page_delay", "1s")
	v.SetDefault("seed.seed_genres", true)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
