package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/money"
)

// RegisterTransactionUseCase agrega transacciones al ledger de forma atómica.
//
// Dentro de una sola transacción de BD: bloquea la fila del producto (SELECT FOR UPDATE),
// resuelve la clave de idempotencia y hace un INSERT condicionado a que el stock derivado
// cubra la salida. Si cualquier paso falla se hace Rollback y el ledger no cambia.
type RegisterTransactionUseCase struct {
	txRunner  TxRunner
	txRepo    repository.TransactionRepository
	validator *TransactionValidator
	window    time.Duration
	listeners []LedgerListener
	now       func() time.Time
}

// NewRegisterTransactionUseCase construye el caso de uso.
// window es la ventana en la que una clave de idempotencia se considera repetida.
func NewRegisterTransactionUseCase(
	txRunner TxRunner,
	txRepo repository.TransactionRepository,
	validator *TransactionValidator,
	window time.Duration,
	listeners ...LedgerListener,
) *RegisterTransactionUseCase {
	return &RegisterTransactionUseCase{
		txRunner:  txRunner,
		txRepo:    txRepo,
		validator: validator,
		window:    window,
		listeners: listeners,
		now:       validator.now,
	}
}

// AddListener suscribe un listener a las transacciones confirmadas.
func (uc *RegisterTransactionUseCase) AddListener(l LedgerListener) {
	uc.listeners = append(uc.listeners, l)
}

// Register valida y registra una transacción. Devuelve el registro con el contexto
// de producto, categoría y proveedor y el stock resultante.
func (uc *RegisterTransactionUseCase) Register(ctx context.Context, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)

	// Un reintento de una transacción ya confirmada no vuelve a validar stock.
	if req.IdempotencyKey != "" {
		existing, err := uc.txRepo.FindByIdempotencyKey(ctx, req.IdempotencyKey, uc.now().Add(-uc.window))
		if err != nil {
			return nil, fmt.Errorf("buscar clave de idempotencia: %w", err)
		}
		if existing != nil {
			return uc.replay(ctx, uc.txRepo, existing, req)
		}
	}

	validated, err := uc.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	var (
		out      *dto.TransactionResponse
		replayed bool
	)
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, txRepo repository.TransactionRepository) error {
		product, err := productRepo.GetForUpdate(ctx, validated.Product.ID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("producto %s: %w", validated.Product.ID, domain.ErrNotFound)
		}

		// Otra petición con la misma clave pudo confirmar mientras esperábamos el bloqueo.
		if req.IdempotencyKey != "" {
			existing, err := txRepo.FindByIdempotencyKey(ctx, req.IdempotencyKey, uc.now().Add(-uc.window))
			if err != nil {
				return err
			}
			if existing != nil {
				out, err = uc.replay(ctx, txRepo, existing, req)
				replayed = err == nil
				return err
			}
		}

		now := uc.now()
		tx := validated.Transaction
		tx.ID = uuid.New().String()
		tx.CreatedAt = now

		inserted, err := txRepo.AppendGuarded(ctx, &tx)
		if err != nil {
			return err
		}
		if !inserted {
			totals, err := txRepo.Totals(ctx, tx.ProductID)
			if err != nil {
				return err
			}
			return &domain.InsufficientStockError{ProductID: tx.ProductID, Requested: tx.Quantity, Available: totals.Stock()}
		}

		totals, err := txRepo.Totals(ctx, tx.ProductID)
		if err != nil {
			return err
		}
		detail, err := txRepo.GetDetail(ctx, tx.ID)
		if err != nil {
			return err
		}
		if detail == nil {
			return fmt.Errorf("transacción %s no encontrada tras insertar", tx.ID)
		}
		resp := dto.TransactionFromDetail(detail, totals.Stock())
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !replayed {
		for _, l := range uc.listeners {
			l.TransactionRecorded(ctx, *out)
		}
	}
	return out, nil
}

// replay devuelve la transacción ya registrada con esa clave, si corresponde a la misma operación.
func (uc *RegisterTransactionUseCase) replay(
	ctx context.Context,
	txRepo repository.TransactionRepository,
	existing *entity.Transaction,
	req dto.CreateTransactionRequest,
) (*dto.TransactionResponse, error) {
	if !samePayload(existing, req) {
		return nil, domain.ErrIdempotencyKeyReused
	}
	detail, err := txRepo.GetDetail(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("transacción %s: %w", existing.ID, domain.ErrNotFound)
	}
	totals, err := txRepo.Totals(ctx, existing.ProductID)
	if err != nil {
		return nil, err
	}
	resp := dto.TransactionFromDetail(detail, totals.Stock())
	resp.Replayed = true
	return &resp, nil
}

// samePayload compara la transacción guardada con el reintento. El total solo cuenta si viene en la petición.
func samePayload(existing *entity.Transaction, req dto.CreateTransactionRequest) bool {
	if existing.ProductID != req.ProductID || existing.Type != req.Type || existing.Quantity != req.Quantity {
		return false
	}
	if !money.EqualAtCents(existing.UnitPrice, req.UnitPrice) {
		return false
	}
	return req.TotalValue == nil || money.EqualAtCents(existing.TotalValue, *req.TotalValue)
}
