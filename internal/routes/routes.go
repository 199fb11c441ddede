package routes

import (
	"movie-ratings/internal/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Handlers struct {
	Movies    *handlers.MovieHandler
	Ratings   *handlers.RatingHandler
	Analytics *handlers.AnalyticsHandler
	API       *handlers.APIHandler
	Upload    *handlers.UploadHandler
}

func Setup(app *fiber.App, h Handlers) {
	// HTML pages
	app.Get("/", h.Movies.List)

	movies := app.Group("/movies")
	{
		movies.Get("/new", h.Movies.NewForm)
		movies.Post("/new", h.Movies.Create)
		movies.Get("/:id/edit", h.Movies.EditForm)
		movies.Post("/:id/edit", h.Movies.Update)
		movies.Post("/:id/delete", h.Movies.Delete)
		movies.Get("/:id", h.Movies.Detail)
	}

	ratings := app.Group("/ratings")
	{
		ratings.Get("/", h.Ratings.List)
		ratings.Get("/new", h.Ratings.NewForm)
		ratings.Post("/new", h.Ratings.Create)
		ratings.Get("/:id/edit", h.Ratings.EditForm)
		ratings.Post("/:id/edit", h.Ratings.Update)
		ratings.Post("/:id/delete", h.Ratings.Delete)
	}

	app.Get("/analytics", h.Analytics.Show)

	app.Get("/uploads/presign", h.Upload.GetPresignedURL)

	// JSON API
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
		MaxAge:       86400,
	}))
	v1 := api.Group("/v1")
	{
		v1.Get("/movies", h.API.ListMovies)
		v1.Get("/movies/:id", h.API.GetMovie)
		v1.Get("/analytics", h.API.Analytics)
	}
}
