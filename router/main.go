package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/qbank-extract/database"
	"github.com/sahilchouksey/qbank-extract/handlers"
	extraction_handlers "github.com/sahilchouksey/qbank-extract/handlers/extraction"
	"github.com/sahilchouksey/qbank-extract/services"
	"github.com/sahilchouksey/qbank-extract/services/spaces"
	"github.com/sahilchouksey/qbank-extract/utils/cache"
)

// Dependencies carries the constructed collaborators into route setup.
// Store, Cache and Archive may be nil; the handlers treat them as
// disabled concerns.
type Dependencies struct {
	Store      database.Storage
	Extractor  *services.QuestionExtractor
	Questions  *services.QuestionStore
	Cache      *cache.RedisCache
	Archive    *spaces.Client
	ScratchDir string
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	extractionHandler := extraction_handlers.NewHandler(
		deps.Extractor,
		deps.Questions,
		deps.Cache,
		deps.Archive,
		deps.ScratchDir,
	)

	v1 := app.Group("/api/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, deps.Store, deps.Cache)
	})

	questions := v1.Group("/questions")
	questions.Post("/upload-pdf", extractionHandler.UploadPDF)
}
