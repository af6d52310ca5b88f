package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/tickethive/ticketing/config"
	"github.com/tickethive/ticketing/internal/handler"
	"github.com/tickethive/ticketing/internal/middleware"
	"github.com/tickethive/ticketing/internal/repository"
	"github.com/tickethive/ticketing/internal/service"
	"github.com/tickethive/ticketing/pkg/database"
	"github.com/tickethive/ticketing/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("database setup failed")
	}
	defer database.Close(db)

	// Without a broker URL the service runs standalone and skips publishing.
	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logrus.WithError(err).Fatal("rabbitmq setup failed")
		}
		defer publisher.Close()
	} else {
		logrus.Warn("RABBITMQ_URL not set, domain events will not be published")
	}

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	eventSvc := service.NewEventService(eventRepo, publisher)
	bookingSvc := service.NewBookingService(bookingRepo, eventRepo, publisher)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.Recover())
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logrus.WithFields(logrus.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
			}).Info("request")
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authn := middleware.Authenticate(authSvc)
	handler.NewAuthHandler(authSvc).RegisterRoutes(e, authn)
	handler.NewEventHandler(eventSvc).RegisterRoutes(e, authn)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e, authn)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithField("port", cfg.ServerPort).Info("starting server")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown failed")
	}
}
