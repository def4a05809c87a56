package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alexindevs/orgbase/internal/access"
	cacheadapter "github.com/alexindevs/orgbase/internal/adapter/cache"
	"github.com/alexindevs/orgbase/internal/bootstrap"
	"github.com/alexindevs/orgbase/internal/config"
	httptransport "github.com/alexindevs/orgbase/internal/http"
	"github.com/alexindevs/orgbase/internal/http/handler"
	httpmiddleware "github.com/alexindevs/orgbase/internal/http/middleware"
	"github.com/alexindevs/orgbase/internal/repository"
	"github.com/alexindevs/orgbase/internal/server"
	"github.com/alexindevs/orgbase/internal/service"
	"github.com/alexindevs/orgbase/internal/telemetry"
	"github.com/alexindevs/orgbase/internal/token"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newUserRepository,
			newOrgRepository,
			newRegistrationStore,
			newOrgSetCache,
			newAccessEngine,
			newTokenIssuer,
			service.NewAccountService,
			service.NewOrgService,
			handler.NewAuthHandler,
			handler.NewAPIHandler,
			httpmiddleware.NewAuth,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.EnsureAdmin, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	if cfg.UsingDefaultSecret() {
		logger.Warn("TOKEN_SECRET not set, using the insecure built-in default; set TOKEN_SECRET before exposing this service")
	}
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	node, err := snowflake.NewNode(1)
	return node, err
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool)
}

func newOrgRepository(pool *pgxpool.Pool, node *snowflake.Node) repository.OrganisationRepository {
	return repository.NewPostgresOrgRepo(pool, node)
}

func newRegistrationStore(pool *pgxpool.Pool, node *snowflake.Node) repository.RegistrationStore {
	return repository.NewPostgresRegistrationStore(pool, node)
}

// newOrgSetCache returns nil when no Redis address is configured; the access
// engine then reads memberships straight from the database.
func newOrgSetCache(lc fx.Lifecycle, cfg config.Config) (access.Cache, error) {
	if !cfg.CacheEnabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return cacheadapter.NewRedisOrgSetCache(client), nil
}

func newAccessEngine(orgs repository.OrganisationRepository, cache access.Cache) *access.Engine {
	return access.NewEngine(orgs, cache)
}

func newTokenIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
