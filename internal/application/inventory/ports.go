package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		txRepo repository.TransactionRepository,
	) error) error
}

// LedgerListener recibe cada transacción confirmada (después del Commit).
// Se usa para invalidar cachés, métricas y el feed en vivo; no puede afectar al registro.
type LedgerListener interface {
	TransactionRecorded(ctx context.Context, tx dto.TransactionResponse)
}
