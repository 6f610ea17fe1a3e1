package app

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/sahilchouksey/qbank-extract/api"
	"github.com/sahilchouksey/qbank-extract/config"
	"github.com/sahilchouksey/qbank-extract/database"
	"github.com/sahilchouksey/qbank-extract/router"
	"github.com/sahilchouksey/qbank-extract/services"
	"github.com/sahilchouksey/qbank-extract/services/cron"
	"github.com/sahilchouksey/qbank-extract/services/gemini"
	"github.com/sahilchouksey/qbank-extract/services/spaces"
	"github.com/sahilchouksey/qbank-extract/utils/cache"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Gemini client is the one hard requirement; everything else is an
	// optional collaborator.
	aiClient, err := gemini.NewClient(gemini.Config{
		Keys:    getEnv.GEMINI_API_KEYS,
		BaseURL: getEnv.GEMINI_BASE_URL,
	})
	if err != nil {
		return fmt.Errorf("gemini client setup failed (set GEMINI_API_KEYS): %w", err)
	}

	extractorConfig := services.DefaultExtractorConfig()
	extractorConfig.TimeBudget = time.Duration(getEnv.EXTRACTION_TIME_BUDGET_SECONDS) * time.Second
	extractorConfig.MaxConcurrent = getEnv.EXTRACTION_MAX_CONCURRENT
	// Each in-flight chunk burns one credential's quota, so concurrency
	// past the pool size only multiplies rate-limit errors.
	if extractorConfig.MaxConcurrent > aiClient.KeyPoolSize() {
		extractorConfig.MaxConcurrent = aiClient.KeyPoolSize()
	}

	extractor := services.NewQuestionExtractor(aiClient, services.NewPDFExtractor(), extractorConfig)

	// Initialize GORM database connection (optional)
	var store database.Storage
	var questionStore *services.QuestionStore
	var gormDB *gorm.DB
	if getEnv.DB_NAME != "" {
		gormStore, err := database.StartGORM()
		if err != nil {
			print("Check whether the Postgres is running or not\n")
			return err
		}
		if err := gormStore.Init(); err != nil {
			print("Failed to initialize database tables\n")
			return err
		}
		store = gormStore

		db, ok := gormStore.GetDB().(*gorm.DB)
		if !ok {
			return fmt.Errorf("failed to get GORM DB instance")
		}
		gormDB = db
		questionStore = services.NewQuestionStore(db)
	} else {
		log.Println("DB_NAME not set, running without persistence")
	}

	// Redis result cache (optional)
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Result caching disabled.", err)
			redisCache = nil
		}
	}

	// Spaces archive (optional)
	var archive *spaces.Client
	spacesConfig := spaces.Config{
		AccessKey: getEnv.DO_SPACES_KEY,
		SecretKey: getEnv.DO_SPACES_SECRET,
		Bucket:    getEnv.DO_SPACES_BUCKET,
		Region:    getEnv.DO_SPACES_REGION,
		Endpoint:  getEnv.DO_SPACES_ENDPOINT,
	}
	if spacesConfig.Enabled() {
		archive, err = spaces.NewClient(spacesConfig)
		if err != nil {
			log.Printf("Warning: Spaces client setup failed: %v. Document archival disabled.", err)
			archive = nil
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(gormDB, getEnv.SCRATCH_DIR)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if store != nil {
			store.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	// Custom Logger
	app.Use(logger.New())

	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, router.Dependencies{
		Store:      store,
		Extractor:  extractor,
		Questions:  questionStore,
		Cache:      redisCache,
		Archive:    archive,
		ScratchDir: getEnv.SCRATCH_DIR,
	})

	// Get the PORT & Start the Server
	return server.Run()

}
