package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/user-admin/internal/config"
	"github.com/jwalitptl/user-admin/internal/handler/health"
	permissionHandler "github.com/jwalitptl/user-admin/internal/handler/permission"
	roleHandler "github.com/jwalitptl/user-admin/internal/handler/role"
	userHandler "github.com/jwalitptl/user-admin/internal/handler/user"
	"github.com/jwalitptl/user-admin/internal/repository/sqlstore"
	"github.com/jwalitptl/user-admin/internal/router"
	permissionService "github.com/jwalitptl/user-admin/internal/service/permission"
	roleService "github.com/jwalitptl/user-admin/internal/service/role"
	userService "github.com/jwalitptl/user-admin/internal/service/user"
	"github.com/jwalitptl/user-admin/pkg/logger"
	"github.com/jwalitptl/user-admin/pkg/messaging"
	"github.com/jwalitptl/user-admin/pkg/messaging/redis"
	"github.com/jwalitptl/user-admin/pkg/metrics"
	"github.com/jwalitptl/user-admin/pkg/security"
	"github.com/jwalitptl/user-admin/pkg/validator"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()

	db, err := sqlstore.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := sqlstore.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(cfg.Monitoring.Namespace, registry)

	store := sqlstore.NewStore(db, m)

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
		}, zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		bp := messaging.NewBrokerPublisher(broker, cfg.Redis.Channel, m, zl)
		defer bp.Close()
		publisher = bp
	}

	hasher, err := security.NewPasswordHasher(cfg.Security.PasswordScheme, cfg.Security.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create password hasher")
	}
	v := validator.New()

	userSvc := userService.NewService(store, hasher, v, cfg.Pagination, userService.WithPublisher(publisher))
	roleSvc := roleService.NewService(store, v, roleService.WithPublisher(publisher))
	permSvc := permissionService.NewService(store, v, permissionService.WithPublisher(publisher))

	r := router.NewRouter(router.RouterConfig{
		Server:     cfg.Server,
		RateLimit:  cfg.RateLimit,
		Monitoring: cfg.Monitoring,
		Metrics:    m,
		Gatherer:   registry,
		Health:     health.NewHandler(store),
	},
		userHandler.NewHandler(userSvc),
		roleHandler.NewHandler(roleSvc),
		permissionHandler.NewHandler(permSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
