// Package marketplace собирает HTTP-приложение бэкенда маркетплейса:
// хранилище, миграции, кеш, брокер событий, сервисы и маршруты.
package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/marketplace-backend/internal/cache"
	"github.com/magabrotheeeer/marketplace-backend/internal/config"
	libjwt "github.com/magabrotheeeer/marketplace-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/marketplace-backend/internal/migrations"
	notifierservice "github.com/magabrotheeeer/marketplace-backend/internal/services/notifier"
	planservice "github.com/magabrotheeeer/marketplace-backend/internal/services/plan"
	subservice "github.com/magabrotheeeer/marketplace-backend/internal/services/subscription"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
)

// App связывает компоненты приложения и владеет их жизненным циклом.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	rabbitConn *amqp.Connection
}

// New инициализирует все зависимости приложения и готовит HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RetriesRabbit, cfg.DelayRabbit)
	if err != nil {
		return nil, err
	}
	rabbitChannel, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}

	jwtMaker := libjwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	notifier := notifierservice.New(rabbitChannel, logger)
	planService := planservice.New(db, cacheRedis, logger)
	subscriptionService := subservice.New(db, notifier, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, jwtMaker, planService, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		rabbitConn: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до ошибки либо отмены контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.cache.Close(); cerr != nil {
			a.logger.Warn("failed to close redis client", slog.String("error", cerr.Error()))
		}
		if cerr := a.rabbitConn.Close(); cerr != nil {
			a.logger.Warn("failed to close rabbitmq connection", slog.String("error", cerr.Error()))
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Warn("failed to close database", slog.String("error", cerr.Error()))
		}
		return err
	}
}
