package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Inventario-offline/internal/application/analytics"
	"github.com/jhoicas/Inventario-offline/internal/application/store"
	appsync "github.com/jhoicas/Inventario-offline/internal/application/sync"
	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Store         *store.Store
	Coordinator   *appsync.Coordinator
	Queue         repository.ActionQueue
	Replenishment *appanalytics.ReplenishmentUseCase
	JWTSecret     string
	AccessKey     string
	Issuer        string
	TokenExpMin   int
}

// Router registra las rutas de la API local del dashboard.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público): intercambio de clave de acceso por token de sesión
	authHandler := NewAuthHandler(deps.JWTSecret, deps.AccessKey, deps.Issuer, deps.TokenExpMin)
	api.Post("/auth/token", authHandler.Token)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.Store)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Movements (protegido)
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.Store)
	movements.Get("/", movementHandler.List)
	movements.Post("/", movementHandler.Create)

	// Sync (protegido)
	syncGroup := protected.Group("/sync")
	syncHandler := NewSyncHandler(deps.Store, deps.Coordinator, deps.Queue)
	syncGroup.Get("/status", syncHandler.Status)
	syncGroup.Post("/refresh", syncHandler.Refresh)

	// Long-poll de cambios para el re-render del dashboard
	protected.Get("/changes", syncHandler.Changes)

	// Analytics (protegido)
	analyticsGroup := protected.Group("/analytics")
	analyticsHandler := NewAnalyticsHandler(deps.Store, deps.Replenishment)
	analyticsGroup.Get("/predictions", analyticsHandler.Predictions)
	analyticsGroup.Get("/anomalies", analyticsHandler.Anomalies)
	analyticsGroup.Get("/replenishment", analyticsHandler.Replenishment)
}
