package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"quizzit/broadcast"
	"quizzit/config"
	"quizzit/handlers"
	"quizzit/logger"
	"quizzit/middleware"
	"quizzit/routes"
	"quizzit/services"
	"quizzit/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

// eventPublisher picks where game events go. With Redis every instance's relay
// feeds its own hub; locally the hub is published to directly.
func eventPublisher(ctx context.Context, cfg *config.Config, rdb *redis.Client, hub *broadcast.Hub, log *slog.Logger) broadcast.Publisher {
	if cfg.RealtimeBackend != config.RealtimeRedis {
		return hub
	}

	relay := broadcast.NewRelay(rdb, hub, logger.New("relay"))
	go func() {
		if err := relay.Run(ctx, nil); err != nil {
			log.Error("realtime relay stopped", slog.String("error", err.Error()))
		}
	}()
	return broadcast.NewRedisPublisher(rdb)
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.New("server")

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get database handle")
	}
	defer sqlDB.Close()

	st := store.NewGormStore(db)
	if cfg.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
	}

	rdb := config.InitRedis(cfg)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "failed to connect to redis")
	}

	hub := broadcast.NewHub(logger.New("hub"))
	go hub.Run(ctx)

	eventLog := logger.New("events")
	audit := broadcast.PublisherFunc(func(_ context.Context, channel, event string, _ any) error {
		eventLog.Debug("event published", slog.String("channel", channel), slog.String("event", event))
		return nil
	})
	downstream := broadcast.Fanout{eventPublisher(ctx, cfg, rdb, hub, log), audit}
	queue := broadcast.NewQueue(downstream, cfg.EventQueueSize, eventLog)
	go queue.Run()

	pins := services.NewPinGenerator(st, cfg.PinMaxAttempts)
	gameService := services.NewGameService(st, pins, queue, services.NewRedisStateCache(rdb), logger.New("game"))
	formService := services.NewFormService(st, logger.New("forms"))

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	handlers.RegisterValidators()
	if logger.ParseLevel(cfg.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger.New("http")), middleware.CORS())
	routes.SetupRoutes(router,
		handlers.NewFormHandler(formService, logger.New("forms")),
		handlers.NewGameHandler(gameService, hub, logger.New("game")),
		limiter,
		cfg.JWTSecret)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening",
			slog.String("addr", cfg.Addr()),
			slog.String("realtime", cfg.RealtimeBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return errors.Wrap(err, "server error")
		}
	case <-ctx.Done():
	}

	log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := queue.Close(shutdownCtx); err != nil {
		log.Warn("pending events dropped", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
	return nil
}
