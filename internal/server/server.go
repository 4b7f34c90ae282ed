package server

import (
	"log"

	"gm-shield-be/internal/bootstrap"
	"gm-shield-be/internal/config"
	"gm-shield-be/internal/pkg/serverutils"
	internalWS "gm-shield-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

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

	registerRoutes(app, container)

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

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.KnowledgeController.RegisterRoutes(api)
	c.TaskController.RegisterRoutes(api)
	c.SearchController.RegisterRoutes(api)

	// Live ingestion progress feed. An optional source_id query param
	// narrows the stream to one source.
	app.Get("/ws/progress", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			sourceFilter := ctx.Query("source_id")
			return websocket.New(func(conn *websocket.Conn) {
				internalWS.ServeWs(c.Hub, conn, sourceFilter)
			})(ctx)
		}
		return fiber.ErrUpgradeRequired
	})
}
