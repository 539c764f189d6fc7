package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jcastell/cafeteria-api/internal/application/auth"
	"github.com/jcastell/cafeteria-api/internal/application/order"
	"github.com/jcastell/cafeteria-api/internal/application/usecase"
	"github.com/jcastell/cafeteria-api/internal/application/wallet"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.UseCase
	ProductUC *usecase.ProductUseCase
	OrderUC   *order.LifecycleUseCase
	WalletUC  *wallet.UseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := AuthMiddleware(deps.JWTSecret)

	// Auth (register/login públicos, me protegido)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", protected, authHandler.Me)

	// Menú: lectura para cualquier usuario autenticado, mutación solo cafetería.
	products := api.Group("/products", protected)
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", RequireRole(entity.RoleCafeteria), productHandler.Create)
	products.Put("/:id", RequireRole(entity.RoleCafeteria), productHandler.Update)
	products.Delete("/:id", RequireRole(entity.RoleCafeteria), productHandler.Delete)

	// Pedidos. RequireRole corta el rol equivocado; las reglas finas
	// (representante vinculado, dueño del pedido) las aplica el caso de uso.
	orders := api.Group("/orders", protected)
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Post("/", RequireRole(entity.RoleStudent), orderHandler.Submit)
	orders.Get("/", RequireRole(entity.RoleCafeteria), orderHandler.ListAll)
	orders.Get("/mine", RequireRole(entity.RoleStudent), orderHandler.Mine)
	orders.Get("/student/:studentId", RequireRole(entity.RoleParent, entity.RoleCafeteria), orderHandler.ListByStudent)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/approve", RequireRole(entity.RoleParent), orderHandler.Approve)
	orders.Post("/:id/reject", RequireRole(entity.RoleParent), orderHandler.Reject)
	orders.Post("/:id/pay", RequireRole(entity.RoleStudent, entity.RoleParent), orderHandler.Pay)
	orders.Post("/:id/advance", RequireRole(entity.RoleCafeteria), orderHandler.Advance)
	orders.Post("/:id/cancel", RequireRole(entity.RoleCafeteria), orderHandler.Cancel)

	// Monedero
	walletGroup := api.Group("/wallet", protected)
	walletHandler := NewWalletHandler(deps.WalletUC)
	walletGroup.Get("/:userId/balance", walletHandler.Balance)
	walletGroup.Get("/:userId/transactions", walletHandler.Transactions)
	walletGroup.Get("/:userId/statement", walletHandler.Statement)
	walletGroup.Post("/:userId/recharge", walletHandler.Recharge)
}
