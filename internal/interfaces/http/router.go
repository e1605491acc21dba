package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/interfaces/ws"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC           *usecase.ProductUseCase
	CategoryUC          *usecase.CategoryUseCase
	SupplierUC          *usecase.SupplierUseCase
	SearchUC            *usecase.SearchUseCase
	RegisterTransaction *inventory.RegisterTransactionUseCase
	LedgerQuery         *inventory.LedgerQueryUseCase
	DashboardUC         *appanalytics.DashboardUseCase
	ReportUC            *appanalytics.ReportUseCase
	AuthUC              *auth.AuthUseCase
	Rejections          RejectionRecorder
	LedgerFeed          fiber.Handler // handler WebSocket del feed; nil desactiva /ws/ledger
	Log                 *logger.Logger
	JWTSecret           string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	// Feed en vivo de transacciones confirmadas; mismo JWT que la API.
	if deps.LedgerFeed != nil {
		app.Get("/ws/ledger", FeedAuthMiddleware(deps.JWTSecret), ws.UpgradeOnly, deps.LedgerFeed)
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/users", RequireRole(entity.RoleAdmin), authHandler.CreateUser)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.LedgerQuery, log)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/stock", productHandler.Stock)

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC, log)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	// Ledger: solo alta y consulta, las transacciones no se editan ni se borran.
	transactions := protected.Group("/transactions")
	transactionHandler := NewTransactionHandler(deps.RegisterTransaction, deps.LedgerQuery, log, deps.Rejections)
	transactions.Get("/", transactionHandler.List)
	transactions.Post("/", transactionHandler.Create)
	transactions.Get("/:id", transactionHandler.GetByID)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.ReportUC, log)
	protected.Get("/dashboard", dashboardHandler.Get)
	protected.Get("/dashboard/report.pdf", dashboardHandler.Report)

	searchHandler := NewSearchHandler(deps.SearchUC, log)
	protected.Get("/search", searchHandler.Search)
}
