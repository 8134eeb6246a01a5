// Package config has a configuration structure
package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/shopspring/decimal"

	"fmt"
	"reflect"
	"time"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config contains configuration data
type Config struct {
	StartingBalance decimal.Decimal `env:"STARTING_BALANCE" envDefault:"10000"`
	StoreDriver     string          `env:"STORE_DRIVER" envDefault:"sqlite"`

	UsernamePostgres string `env:"POSTGRES_USER" envDefault:"postgres"`
	PasswordPostgres string `env:"POSTGRES_PASSWORD" envDefault:"testpassword"`
	HostPostgres     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PortPostgres     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBNamePostgres   string `env:"POSTGRES_DB" envDefault:"postgres"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"trading.db"`

	EnabledRedisCache bool          `env:"REDIS_ENABLED" envDefault:"true"`
	ServerRedisCache  string        `env:"REDIS_SERVER" envDefault:"server1"`
	HostRedisCache    string        `env:"REDIS_HOST" envDefault:"localhost"`
	PortRedisCache    string        `env:"REDIS_PORT" envDefault:"6379"`
	PriceCacheTTL     time.Duration `env:"PRICE_CACHE_TTL" envDefault:"30s"`

	OracleURL      string        `env:"ORACLE_URL" envDefault:"https://api.coingecko.com/api/v3"`
	OracleCurrency string        `env:"ORACLE_CURRENCY" envDefault:"usd"`
	OracleTimeout  time.Duration `env:"ORACLE_TIMEOUT" envDefault:"5s"`

	HostGrpc string `env:"HOST_GRPC" envDefault:"localhost"`
	PortGrpc string `env:"PORT_GRPC" envDefault:"10000"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// New parses the environment into a Config
func New() (*Config, error) {
	cfg := new(Config)
	err := env.ParseWithFuncs(cfg, map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(decimal.Decimal{}): func(v string) (interface{}, error) {
			return decimal.NewFromString(v)
		},
	})
	if err != nil {
		return nil, err
	}
	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresURL builds the connection string
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.UsernamePostgres, c.PasswordPostgres, c.HostPostgres, c.PortPostgres, c.DBNamePostgres)
}

// GrpcAddr returns host:port of the grpc listener
func (c *Config) GrpcAddr() string {
	return fmt.Sprint(c.HostGrpc, ":", c.PortGrpc)
}

// RedisAddr returns host:port of the redis shard
func (c *Config) RedisAddr() string {
	return fmt.Sprint(c.HostRedisCache, ":", c.PortRedisCache)
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.StartingBalance.IsNegative() {
		return fmt.Errorf("starting balance must not be negative, got %s", c.StartingBalance)
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("oracle timeout must be positive, got %s", c.OracleTimeout)
	}
	return nil
}
