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
	_ "github.com/jcastell/cafeteria-api/docs"
	"github.com/jcastell/cafeteria-api/internal/application/auth"
	"github.com/jcastell/cafeteria-api/internal/application/order"
	"github.com/jcastell/cafeteria-api/internal/application/usecase"
	"github.com/jcastell/cafeteria-api/internal/application/wallet"
	infrapdf "github.com/jcastell/cafeteria-api/internal/infrastructure/pdf"
	"github.com/jcastell/cafeteria-api/internal/infrastructure/postgres"
	httpRouter "github.com/jcastell/cafeteria-api/internal/interfaces/http"
	"github.com/jcastell/cafeteria-api/pkg/config"
	"github.com/jcastell/cafeteria-api/pkg/logger"
)

// @title           Cafetería Escolar API
// @version         1.0
// @description     Pedidos de cafetería escolar con aprobación del representante y pago con tokens.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	statementGen := infrapdf.NewMarotoStatementGenerator()
	walletUC := wallet.NewUseCase(userRepo, tokenRepo, statementGen)
	orderUC := order.NewLifecycleUseCase(txRunner, orderRepo, productRepo, userRepo, walletUC)
	productUC := usecase.NewProductUseCase(productRepo)
	authUC := auth.NewUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Cafetería Escolar API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ProductUC: productUC,
		OrderUC:   orderUC,
		WalletUC:  walletUC,
		JWTSecret: cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
