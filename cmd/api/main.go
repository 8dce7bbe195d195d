package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/Inventario-offline/internal/application/analytics"
	"github.com/jhoicas/Inventario-offline/internal/application/store"
	appsync "github.com/jhoicas/Inventario-offline/internal/application/sync"
	"github.com/jhoicas/Inventario-offline/internal/domain/repository"
	infrabackend "github.com/jhoicas/Inventario-offline/internal/infrastructure/backend"
	"github.com/jhoicas/Inventario-offline/internal/infrastructure/connectivity"
	"github.com/jhoicas/Inventario-offline/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-offline/internal/infrastructure/offline"
	"github.com/jhoicas/Inventario-offline/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/Inventario-offline/internal/interfaces/http"
	"github.com/jhoicas/Inventario-offline/pkg/config"
	"github.com/jhoicas/Inventario-offline/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Almacenamiento durable; si SQLite falla la sesión degrada a memoria
	// (se pierde durabilidad, no la funcionalidad).
	var kv repository.KVStore
	kv, err = sqlite.Open(cfg.Storage.Path)
	if err != nil {
		log.Warn().Err(err).Msg("almacenamiento local no disponible; la sesión opera solo en memoria")
		kv = memory.NewKVStore()
	}
	defer kv.Close()

	cache := offline.NewSnapshotCache(kv)
	queue := offline.NewActionQueue(kv)

	gateway := infrabackend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Backend.Timeout())
	monitor := connectivity.NewMonitor(gateway, log, cfg.Sync.ProbeInterval())

	st := store.New(store.Deps{
		Log:         log,
		Gateway:     gateway,
		Monitor:     monitor,
		Cache:       cache,
		Queue:       queue,
		HorizonDays: cfg.Sync.PredictionHorizonDays,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Cargar el último snapshot bueno conocido antes de aceptar tráfico.
	if err := st.Bootstrap(ctx); err != nil {
		log.Warn().Err(err).Msg("carga inicial desde caché; se arranca con estado vacío")
	}

	coordinator := appsync.New(appsync.Deps{
		Store:       st,
		Cache:       cache,
		Queue:       queue,
		Gateway:     gateway,
		Monitor:     monitor,
		Log:         log,
		Interval:    cfg.Sync.Interval(),
		MaxAttempts: cfg.Sync.MaxActionAttempts,
	})

	go monitor.Run(ctx)
	go coordinator.Run(ctx)

	replenishmentUC := appanalytics.NewReplenishmentUseCase(st)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 70, // el long-poll de cambios espera hasta 60 s
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Offline API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Store:         st,
		Coordinator:   coordinator,
		Queue:         queue,
		Replenishment: replenishmentUC,
		JWTSecret:     cfg.JWT.Secret,
		AccessKey:     cfg.JWT.AccessKey,
		Issuer:        cfg.JWT.Issuer,
		TokenExpMin:   cfg.JWT.Expiration,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
