package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/palaver-chat/palaver/internal/config"
	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/handler"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/repository"
	"github.com/palaver-chat/palaver/internal/service"
	"github.com/palaver-chat/palaver/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	// Provider is the storage backend selected at startup; nil runs the
	// service in degraded mode with uploads rejected.
	Provider domain.StorageProvider
	// OnCreated is an optional hook invoked with each successful upload
	// before subscribers are notified.
	OnCreated service.CreatedCallback
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Initialize repositories
	fileRepo := repository.NewMongoFileRepository(deps.MongoDB)
	roomRepo := repository.NewMongoRoomRepository(deps.MongoDB)
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	messageRepo := repository.NewMongoMessageRepository(deps.MongoDB)
	eventPublisher := repository.NewRedisEventPublisher(deps.RedisClient)

	// Initialize services
	fileService := service.NewFileService(
		deps.Config.Files,
		fileRepo,
		roomRepo,
		userRepo,
		messageRepo,
		deps.Provider,
		eventPublisher,
		deps.OnCreated,
	)

	// Initialize handlers
	fileHandler := handler.NewFileHandler(fileService, deps.Config.Server.MaxUploadSizeMB)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Palaver Files API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	if deps.Config.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "palaver-files",
		})
	})

	// Binary downloads (local provider); object store providers serve their
	// own URLs
	app.Get("/files/:id/:name", fileHandler.Download)

	// API v1 routes
	v1 := app.Group("/v1")
	v1.Use(middleware.RequireAuth(deps.Config.JWT.Secret))

	v1.Get("/files", fileHandler.List)
	v1.Get("/rooms/:room/files", fileHandler.List)
	v1.Post("/rooms/:room/files", fileHandler.Upload)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
