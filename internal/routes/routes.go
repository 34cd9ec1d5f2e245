package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, cfg *config.Config, backend *services.BackendService, logger *zap.Logger) {
	catalog := services.NewCatalogService(backend, cfg.CatalogCacheTTL, logger)

	verificationHandler := handlers.NewVerificationHandler(backend, cfg, logger)
	catalogHandler := handlers.NewCatalogHandler(catalog)

	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	// Phone verification proxy
	verificacion := api.Group("/verificacion")
	verificacion.Post("/enviar-codigo", verificationHandler.SendCode)
	verificacion.Post("/verificar-codigo", verificationHandler.VerifyCode)

	// Catalog
	products := api.Group("/products")
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	api.Get("/categories", catalogHandler.ListCategories)
	api.Post("/catalog/refresh",
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.RequirePlan(cfg.AdminPlanID),
		catalogHandler.RefreshCatalog,
	)

	api.Get("/session", middleware.AuthMiddleware(cfg.JWTSecret), handlers.Session)
}
