package server

import (
	"log"

	"docinsight-be/internal/bootstrap"
	"docinsight-be/internal/config"
	"docinsight-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Initialize Fiber App
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, raw document content arrives in the request body
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Routes
	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")

	// Registered before the auth middleware: browsers cannot attach an
	// Authorization header to a websocket upgrade.
	c.StatusHandler.RegisterRoutes(api)

	if cfg.App.JwtSecret != "" {
		api.Use(serverutils.JwtProtected(cfg.App.JwtSecret))
	} else {
		log.Println("[WARN] JWT_SECRET not set, API routes are unauthenticated")
	}

	c.DocumentController.RegisterRoutes(api)
	c.MeetingController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
	c.InsightController.RegisterRoutes(api)
}
