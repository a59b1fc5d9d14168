package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Entry EntryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"AUCTIONDESK_APP_ENV" default:"dev"`
	Port     string `envconfig:"AUCTIONDESK_APP_PORT" default:"8080"`
	LogLevel string `envconfig:"AUCTIONDESK_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"AUCTIONDESK_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"AUCTIONDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUCTIONDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUCTIONDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUCTIONDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUCTIONDESK_REDIS_URL"`
	Address      string        `envconfig:"AUCTIONDESK_REDIS_ADDR"`
	Password     string        `envconfig:"AUCTIONDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUCTIONDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUCTIONDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUCTIONDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUCTIONDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUCTIONDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUCTIONDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// EntryConfig tunes the bid-entry engine and the endpoints it depends on.
type EntryConfig struct {
	LookupLimit   int           `envconfig:"AUCTIONDESK_LOOKUP_LIMIT" default:"10"`
	Debounce      time.Duration `envconfig:"AUCTIONDESK_ENTRY_DEBOUNCE" default:"300ms"`
	BlurDelay     time.Duration `envconfig:"AUCTIONDESK_ENTRY_BLUR_DELAY" default:"400ms"`
	PollInterval  time.Duration `envconfig:"AUCTIONDESK_ENTRY_POLL_INTERVAL" default:"5s"`
	NoticeTimeout time.Duration `envconfig:"AUCTIONDESK_ENTRY_NOTICE_TIMEOUT" default:"5s"`
	RecentEntries int           `envconfig:"AUCTIONDESK_ENTRY_RECENT_ENTRIES" default:"5"`
}
