// @title                       Identity Service API
// @version                     1.0
// @description                 Accounts, roles and JWT access tokens.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identification/identity-service/internal/api"
	"github.com/identification/identity-service/internal/api/handler"
	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/core/ports"
	"github.com/identification/identity-service/internal/core/service"
	"github.com/identification/identity-service/internal/infrastructure/config"
	"github.com/identification/identity-service/internal/infrastructure/crypto"
	"github.com/identification/identity-service/internal/infrastructure/db/memory"
	mongostore "github.com/identification/identity-service/internal/infrastructure/db/mongo"
	pgstore "github.com/identification/identity-service/internal/infrastructure/db/postgres"
	redisstore "github.com/identification/identity-service/internal/infrastructure/db/redis"
	"github.com/identification/identity-service/internal/infrastructure/seed"
	"github.com/identification/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// stores bundles the selected backend. close releases its connections.
type stores struct {
	name        string
	credentials ports.CredentialStore
	roles       ports.RoleStore
	close       func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("identity service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	hasher := crypto.NewHasher(cfg.BcryptCost)

	st, err := openStores(ctx, cfg, hasher)
	if err != nil {
		return err
	}
	defer st.close()
	log.Info().Str("driver", st.name).Msg("store ready")

	if cfg.JWT.Key == "" {
		log.Warn().Msg("JWT_KEY is empty, sign-in will fail until it is set")
	}

	issuer := service.NewTokenIssuer(cfg.JWT, st.credentials)
	identity := service.NewIdentityService(st.credentials, st.roles, issuer, log)

	if cfg.Seed.Enabled {
		seeder := seed.NewSeeder(identity, st.roles, log)
		err := seeder.Run(ctx,
			seed.Account{Username: cfg.Seed.AdminUsername, Password: cfg.Seed.AdminPassword, Role: domain.RoleAdmin},
			seed.Account{Username: cfg.Seed.OperatorUsername, Password: cfg.Seed.OperatorPassword, Role: domain.RoleOperator},
		)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	health := map[string]handler.Pinger{st.name: st.credentials}

	var throttle handler.LoginThrottle
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		throttle = redisstore.NewLoginThrottle(rdb, cfg.Login.MaxFailures, cfg.Login.Lockout)
		health["redis"] = handler.PingFunc(redisstore.Ping(rdb))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle enabled")
	}

	e := api.NewRouter(api.Dependencies{
		Identity: identity,
		Verifier: issuer,
		Throttle: throttle,
		Health:   health,
		Logger:   log,
	})

	return serve(ctx, e, cfg.Port, log)
}

func openStores(ctx context.Context, cfg *config.Config, hasher *crypto.Hasher) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			name:        "mongodb",
			credentials: mongostore.NewCredentialStore(db, hasher),
			roles:       mongostore.NewRoleStore(db),
			close:       func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, pgstore.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		if err := pgstore.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			name:        "postgres",
			credentials: pgstore.NewCredentialStore(pool, hasher),
			roles:       pgstore.NewRoleStore(pool),
			close:       pool.Close,
		}, nil

	default:
		mem := memory.NewStore(hasher)
		return &stores{
			name:        "memory",
			credentials: mem.Credentials(),
			roles:       mem.Roles(),
			close:       func() {},
		}, nil
	}
}

func serve(ctx context.Context, e *echo.Echo, port string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", port).Msg("http server listening")
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
