// Package bootstrap arma las dependencias de la aplicación (store, casos de uso,
// caché, métricas y feed en vivo) a partir de la configuración.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	appanalytics "github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/seed"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/internal/interfaces/ws"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Repositories implementación de almacenamiento elegida (postgres o memoria).
type Repositories struct {
	Products     repository.ProductRepository
	Categories   repository.CategoryRepository
	Suppliers    repository.SupplierRepository
	Transactions repository.TransactionRepository
	Users        repository.UserRepository
	Dashboard    repository.DashboardRepository
	TxRunner     inventory.TxRunner
}

// Container dependencias listas para el router.
type Container struct {
	Repos Repositories

	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	SupplierUC  *usecase.SupplierUseCase
	SearchUC    *usecase.SearchUseCase
	Register    *inventory.RegisterTransactionUseCase
	LedgerQuery *inventory.LedgerQueryUseCase
	DashboardUC *appanalytics.DashboardUseCase
	ReportUC    *appanalytics.ReportUseCase
	AuthUC      *auth.AuthUseCase

	// Opcionales: nil si están deshabilitados.
	Metrics *metrics.Metrics
	Hub     *ws.Hub
	Cache   *cache.DashboardCache

	closers []func()
}

// New abre el store configurado y construye los casos de uso.
// Con STORE=memory se carga además el seed de demostración (no hay otra forma de tener un usuario).
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	policy, err := domaininv.ParseCostPolicy(cfg.Dashboard.CostPolicy)
	if err != nil {
		return nil, err
	}

	c := &Container{}
	switch cfg.App.Store {
	case config.StoreMemory:
		c.Repos = memoryRepositories(memory.NewStore())
		log.Warn().Msg("usando store en memoria: los datos se pierden al reiniciar")
	case config.StorePostgres, "":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.closers = append(c.closers, pool.Close)
		if cfg.DB.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				c.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
		}
		c.Repos = postgresRepositories(pool)
	default:
		return nil, fmt.Errorf("STORE desconocido: %q", cfg.App.Store)
	}

	var (
		ledgerListeners  []inventory.LedgerListener
		catalogListeners []usecase.CatalogListener
	)
	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, dashboard sin caché")
		} else {
			c.closers = append(c.closers, func() { _ = client.Close() })
			c.Cache = cache.NewDashboardCache(client, cfg.Redis.CacheTTL, log.Component("cache"))
			ledgerListeners = append(ledgerListeners, c.Cache)
			catalogListeners = append(catalogListeners, c.Cache)
		}
	}

	r := c.Repos
	stock := inventory.NewStockReader(r.Transactions)
	validator := inventory.NewTransactionValidator(r.Products, stock, time.Now)

	c.ProductUC = usecase.NewProductUseCase(r.Products, r.Categories, r.Suppliers, stock, r.TxRunner, catalogListeners...)
	c.CategoryUC = usecase.NewCategoryUseCase(r.Categories, r.Products, catalogListeners...)
	c.SupplierUC = usecase.NewSupplierUseCase(r.Suppliers, r.Products, catalogListeners...)
	c.SearchUC = usecase.NewSearchUseCase(r.Products, r.Categories, r.Suppliers)
	c.Register = inventory.NewRegisterTransactionUseCase(r.TxRunner, r.Transactions, validator, cfg.Ledger.IdempotencyWindow, ledgerListeners...)
	c.LedgerQuery = inventory.NewLedgerQueryUseCase(r.Transactions, r.Products, stock)

	c.DashboardUC = appanalytics.NewDashboardUseCase(r.Dashboard, r.Products, r.Suppliers, policy)
	if c.Cache != nil {
		c.DashboardUC.WithCache(c.Cache)
	}
	c.ReportUC = appanalytics.NewReportUseCase(c.DashboardUC, pdf.NewMarotoReportGenerator(cfg.App.Name))
	c.AuthUC = auth.NewAuthUseCase(r.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.App.Store == config.StoreMemory {
		if _, err := seed.Run(ctx, c.SeedDeps(), seed.Options{Seed: uint64(time.Now().UnixNano())}, log.Component("seed")); err != nil {
			c.Close()
			return nil, err
		}
	}

	// Métricas y feed en vivo solo ven el tráfico real, no el seed.
	if cfg.App.MetricsEnabled {
		c.Metrics = metrics.New()
		c.Register.AddListener(c.Metrics)
	}
	c.Hub = ws.NewHub(log.Component("ws"), 256)
	c.Register.AddListener(c.Hub)
	return c, nil
}

// SeedDeps casos de uso que necesita el seed.
func (c *Container) SeedDeps() seed.Deps {
	return seed.Deps{
		Auth:       c.AuthUC,
		Categories: c.CategoryUC,
		Suppliers:  c.SupplierUC,
		Products:   c.ProductUC,
		Register:   c.Register,
	}
}

// Close libera pool y cliente redis en orden inverso.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func memoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Products:     s.Products(),
		Categories:   s.Categories(),
		Suppliers:    s.Suppliers(),
		Transactions: s.Transactions(),
		Users:        s.Users(),
		Dashboard:    s.Dashboard(),
		TxRunner:     s.TxRunner(),
	}
}

func postgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Products:     postgres.NewProductRepository(pool),
		Categories:   postgres.NewCategoryRepository(pool),
		Suppliers:    postgres.NewSupplierRepository(pool),
		Transactions: postgres.NewTransactionRepository(pool),
		Users:        postgres.NewUserRepository(pool),
		Dashboard:    postgres.NewDashboardRepository(pool),
		TxRunner:     postgres.NewTxRunner(pool),
	}
}
