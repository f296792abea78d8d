package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/learningmate-ops/backend/internal/config"
	"example.com/learningmate-ops/backend/internal/handlers"
	"example.com/learningmate-ops/backend/internal/notifications"
	"example.com/learningmate-ops/backend/internal/repository"
	"example.com/learningmate-ops/backend/internal/stats"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) (*echo.Echo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	collectionRepo := repository.NewCollectionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	hub := notifications.NewHub()
	engine := stats.NewEngine(loc)

	collectionHandler := handlers.NewCollectionHandler(collectionRepo, hub)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, hub)
	statsHandler := handlers.NewStatsHandler(collectionRepo, settingsRepo, engine)
	exportHandler := handlers.NewExportHandler(collectionRepo, settingsRepo, engine, cfg.Report.ProductName)
	eventsHandler := handlers.NewEventsHandler(hub)

	registerRoutes(
		e,
		collectionHandler,
		settingsHandler,
		statsHandler,
		exportHandler,
		eventsHandler,
		writeRateLimiter(cfg.Server),
	)

	return e, nil
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

// writeRateLimiter ограничивает частоту записей коллекций. Дебаунс на
// клиенте уже прореживает запросы, лимит защищает от сбойных клиентов.
func writeRateLimiter(cfg config.ServerConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.WriteRateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.WriteRateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
