package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/devfolio-io/devfolio/internal/config"
	"github.com/devfolio-io/devfolio/internal/infra/authprovider"
	"github.com/devfolio-io/devfolio/internal/infra/cache"
	"github.com/devfolio-io/devfolio/internal/infra/db"
	"github.com/devfolio-io/devfolio/internal/infra/logger"
	mq "github.com/devfolio-io/devfolio/internal/infra/queue"
	"github.com/devfolio-io/devfolio/internal/middleware"
	"github.com/devfolio-io/devfolio/internal/modules/handler"
	"github.com/devfolio-io/devfolio/internal/modules/repo"
	"github.com/devfolio-io/devfolio/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.App.Env == "dev" {
			return logger.NewDevelopment()
		}
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			log.Info("database migrated", zap.String("driver", d.Dialector.Name()))
		}
		return d, nil
	})

	// Redis, nil when disabled
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.Redis.Enabled {
			return nil, nil
		}
		return cache.New(cfg.Redis)
	})

	do.Provide(inj, func(i *do.Injector) (service.ReadCache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb := do.MustInvoke[*redis.Client](i)
		if rdb == nil {
			return nil, nil
		}
		ttl := time.Duration(cfg.Redis.CacheTTLSec) * time.Second
		return cache.NewJSONCache(rdb, cfg.App.Name+":", ttl, do.MustInvoke[*zap.Logger](i)), nil
	})

	// RabbitMQ DialFunc for connection and reconnection
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return mq.Dialer(cfg.RabbitMQ.URL, cfg.RabbitMQ.EnableTLS), nil
	})

	// RabbitMQ Connection, nil when disabled
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.RabbitMQ.Enabled {
			return nil, nil
		}
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return dialFn()
	})

	// RabbitMQ Publisher
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		if conn == nil {
			return nil, nil
		}
		return mq.NewPublisher(conn, cfg.RabbitMQ.ExchangeName.ProjectEvents, do.MustInvoke[*zap.Logger](i), cfg.App.Name)
	})

	// Auth provider
	do.Provide(inj, func(i *do.Injector) (authprovider.Provider, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		switch strings.ToLower(cfg.Auth.Provider) {
		case "", "http":
			return authprovider.NewHTTPProvider(cfg.Auth.BaseURL, log), nil
		case "supabase":
			sb := cfg.Auth.Supabase
			return authprovider.NewSupabaseProvider(sb.ProjectRef, sb.APIKey, sb.URL, cfg.Auth.SessionCookieName, log), nil
		default:
			return nil, fmt.Errorf("unsupported auth provider: %s", cfg.Auth.Provider)
		}
	})

	do.Provide(inj, func(i *do.Injector) (*middleware.RateLimiter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Auth.RateLimitRPS <= 0 {
			return nil, nil
		}
		return middleware.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[service.ReadCache](i),
			do.MustInvoke[service.EventPublisher](i),
			cfg.RabbitMQ,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		return service.NewAuthService(
			do.MustInvoke[authprovider.Provider](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[service.AuthService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.PageHandler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return handler.NewPageHandler(cfg.App.Name, "/dashboard"), nil
	})
	return inj
}
