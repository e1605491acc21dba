// seed carga el usuario administrador y un catálogo de demostración con seis meses de
// transacciones en la base configurada (STORE=postgres).
//
// Uso: go run ./cmd/seed [-seed N]
// Es idempotente: si ya hay categorías no toca el catálogo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger-api/internal/application/seed"
	"github.com/jhoicas/stock-ledger-api/internal/bootstrap"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	rngSeed := flag.Uint64("seed", 20260301, "semilla del generador de transacciones")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.App.Store != config.StorePostgres {
		fmt.Fprintln(os.Stderr, "el seed solo aplica a STORE=postgres (el store en memoria se carga al arrancar la API)")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx := context.Background()

	// Las migraciones deben existir antes de insertar.
	cfg.DB.AutoMigrate = true
	container, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer container.Close()

	sum, err := seed.Run(ctx, container.SeedDeps(), seed.Options{Seed: *rngSeed}, log)
	if err != nil {
		log.Error().Err(err).Msg("seed")
		container.Close()
		os.Exit(1)
	}

	fmt.Printf("admin: %s / %s (creado: %t)\n", seed.AdminEmail, seed.AdminPassword, sum.AdminCreated)
	if sum.Skipped {
		fmt.Println("catálogo existente, sin cambios")
		return
	}
	fmt.Printf("categorías: %d, proveedores: %d, productos: %d, transacciones: %d\n",
		sum.Categories, sum.Suppliers, sum.Products, sum.Transactions)
}
