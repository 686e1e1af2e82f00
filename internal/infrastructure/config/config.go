package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/identification/identity-service/internal/core/domain"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`
	BcryptCost  int    `env:"BCRYPT_COST,  default=10"`

	JWT      JWTConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Login    LoginConfig
	Seed     SeedConfig
}

// JWTConfig holds the token signing settings. An empty Key is allowed at
// startup; token issuance fails until it is set.
type JWTConfig struct {
	Key      string `env:"JWT_KEY"`
	Issuer   string `env:"JWT_ISSUER,   default=identification-service"`
	Audience string `env:"JWT_AUDIENCE, default=identification-service"`
}

// SigningConfig satisfies ports.SigningConfigSource.
func (c JWTConfig) SigningConfig() domain.SigningConfig {
	return domain.SigningConfig{Secret: c.Key, Issuer: c.Issuer, Audience: c.Audience}
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identification"`
}

type PostgresConfig struct {
	DSN      string `env:"POSTGRES_DSN"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS, default=10"`
}

// RedisConfig enables the login throttle when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	MaxFailures int           `env:"LOGIN_MAX_FAILURES, default=5"`
	Lockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

// SeedConfig controls the first-start role and account seeding. Accounts are
// only seeded when both username and password are set.
type SeedConfig struct {
	Enabled          bool   `env:"SEED_ENABLED, default=true"`
	AdminUsername    string `env:"SEED_ADMIN_USERNAME, default=SuperAdmin"`
	AdminPassword    string `env:"SEED_ADMIN_PASSWORD"`
	OperatorUsername string `env:"SEED_OPERATOR_USERNAME, default=Ope"`
	OperatorPassword string `env:"SEED_OPERATOR_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.StoreDriver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if strings.TrimSpace(cfg.JWT.Issuer) == "" || strings.TrimSpace(cfg.JWT.Audience) == "" {
		return nil, fmt.Errorf("config: JWT_ISSUER and JWT_AUDIENCE must not be empty")
	}
	if cfg.StoreDriver == DriverPostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("config: POSTGRES_DSN is required for the postgres driver")
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
