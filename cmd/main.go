package main

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "movie-ratings/docs"
	"movie-ratings/internal/config"
	"movie-ratings/internal/database"
	"movie-ratings/internal/handlers"
	"movie-ratings/internal/logger"
	"movie-ratings/internal/repository"
	"movie-ratings/internal/routes"
	"movie-ratings/internal/services"
	"movie-ratings/internal/utils"
	"movie-ratings/internal/views"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

// @title Movie Ratings API
// @version 1.0
// @description Read-only JSON access to movies, their ratings and rating analytics

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api/v1
// @schemes http https

func main() {
	log := logger.New()

	config.LoadEnvFile(log)
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Warnf("Configuration validation warning: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		}
	}()

	var posters services.PosterStorage
	if cfg.MinIO.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		p, err := services.NewPosterStorage(ctx, cfg.MinIO, log)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Poster storage unavailable, uploads disabled")
		} else {
			posters = p
		}
	} else {
		log.Info("AWS_ENDPOINT not set, poster uploads disabled")
	}

	movieRepo := repository.NewMovieRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	movieService := services.NewMovieService(movieRepo, ratingRepo, db, posters, log)
	ratingService := services.NewRatingService(ratingRepo, movieRepo, log)

	sessions := session.New(session.Config{
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		Expiration:     cfg.Session.Expiration,
		CookieSecure:   cfg.Session.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
	flash := handlers.NewFlasher(sessions, log)

	app := fiber.New(fiber.Config{
		AppName:      "Movie Ratings",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		Immutable:    true,
		Views:        views.New(time.Local),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: customErrorHandler(log),
	})

	setupMiddleware(app, cfg.Session.Secret)

	app.Get("/health", healthCheckHandler(db))

	// Swagger documentation
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	routes.Setup(app, routes.Handlers{
		Movies:    handlers.NewMovieHandler(movieService, ratingService, flash, posters != nil, log),
		Ratings:   handlers.NewRatingHandler(ratingService, movieService, flash, time.Local, log),
		Analytics: handlers.NewAnalyticsHandler(ratingService, flash, log),
		API:       handlers.NewAPIHandler(movieService, ratingService, log),
		Upload:    handlers.NewUploadHandler(posters, log),
	})

	// Graceful shutdown
	go gracefulShutdown(app, log)

	log.Infof("Movie Ratings starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Errorf("Failed to start HTTP server: %v", err)
	}
}

// cookieKey turns the session secret into the 32-byte base64 key encryptcookie expects.
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func setupMiddleware(app *fiber.App, secret string) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Logger middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cookieKey(secret),
	}))
}

func healthCheckHandler(db *database.Database) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		dbStatus := "healthy"
		if err := db.HealthCheck(); err != nil {
			status = fiber.StatusServiceUnavailable
			dbStatus = "unhealthy"
		}

		return c.Status(status).JSON(fiber.Map{
			"status":    "ok",
			"service":   "movie-ratings",
			"version":   "1.0.0",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// customErrorHandler answers JSON under /api and a plain page elsewhere.
func customErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		entry := log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": code,
		})
		if code >= fiber.StatusInternalServerError {
			entry.Error("Request error")
		} else {
			entry.Debug("Request rejected")
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return utils.ErrorResponse(c, code, err.Error())
		}
		return c.Status(code).SendString(fmt.Sprintf("%d %s", code, fiberutils.StatusMessage(code)))
	}
}

func gracefulShutdown(app *fiber.App, log *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Errorf("Error during shutdown: %v", err)
	}

	log.Info("Server shutdown complete")
}
