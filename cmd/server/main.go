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

	"github.com/devfolio-io/devfolio/internal/bootstrap"
	"github.com/devfolio-io/devfolio/internal/config"
	"github.com/devfolio-io/devfolio/internal/infra/authprovider"
	"github.com/devfolio-io/devfolio/internal/infra/cache"
	"github.com/devfolio-io/devfolio/internal/infra/db"
	"github.com/devfolio-io/devfolio/internal/middleware"
	"github.com/devfolio-io/devfolio/internal/modules/handler"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"github.com/devfolio-io/devfolio/internal/router"
	"github.com/devfolio-io/devfolio/internal/telemetry"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

//	@title			devfolio API
//	@version		0.1.0
//	@description	Project portfolio dashboard API.
//	@BasePath		/api

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	inj := bootstrap.BuildContainer()
	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	if cfg.App.Env != "dev" && cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	providers, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	if err := telemetry.InitProjectMetrics(); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	if err := validation.RegisterGinBinding(); err != nil {
		return err
	}

	gdb := do.MustInvoke[*gorm.DB](inj)
	if cfg.Telemetry.Enabled {
		if err := db.RegisterOpenTelemetryPlugin(gdb); err != nil {
			log.Warn("register gorm tracing", zap.Error(err))
		}
	}
	if rdb := do.MustInvoke[*redis.Client](inj); rdb != nil {
		if cfg.Telemetry.Enabled {
			if err := cache.Instrument(rdb); err != nil {
				log.Warn("instrument redis", zap.Error(err))
			}
		}
		defer func() { _ = rdb.Close() }()
	}
	if conn := do.MustInvoke[*amqp.Connection](inj); conn != nil {
		defer func() { _ = conn.Close() }()
	}

	rl := do.MustInvoke[*middleware.RateLimiter](inj)
	engine := router.NewRouter(router.RouterDeps{
		Config:         cfg,
		Log:            log,
		Sessions:       do.MustInvoke[authprovider.Provider](inj),
		RateLimiter:    rl,
		ProjectHandler: do.MustInvoke[*handler.ProjectHandler](inj),
		AuthHandler:    do.MustInvoke[*handler.AuthHandler](inj),
		PageHandler:    do.MustInvoke[*handler.PageHandler](inj),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if rl != nil {
		g.Go(func() error {
			rl.Run(gctx, 3*time.Minute, 5*time.Minute)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info("shutting down")
		err := srv.Shutdown(shutdownCtx)
		if terr := providers.Shutdown(shutdownCtx); terr != nil {
			log.Warn("shutdown telemetry", zap.Error(terr))
		}
		return err
	})
	return g.Wait()
}
