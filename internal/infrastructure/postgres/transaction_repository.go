package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo ledger sobre PostgreSQL. Solo INSERT y SELECT.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `t.id, t.type, t.quantity, t.unit_price, t.total_value, t.product_id, t.date, COALESCE(t.idempotency_key, ''), t.created_at`

func transactionDest(tx *entity.Transaction) []any {
	return []any{&tx.ID, &tx.Type, &tx.Quantity, &tx.UnitPrice, &tx.TotalValue, &tx.ProductID, &tx.Date, &tx.IdempotencyKey, &tx.CreatedAt}
}

const transactionDetailSelect = `
	SELECT ` + transactionColumns + `, ` + productColumns + `,
	       c.id, c.name, c.description, c.created_at, c.updated_at,
	       s.id, s.name, s.contact, s.phone, s.email, s.created_at, s.updated_at
	FROM transactions t
	JOIN products p ON p.id = t.product_id
	JOIN categories c ON c.id = p.category_id
	JOIN suppliers s ON s.id = p.supplier_id`

func transactionDetailDest(d *entity.TransactionDetail) []any {
	return append(transactionDest(&d.Transaction), productDetailDest(&d.Product)...)
}

// AppendGuarded INSERT ... SELECT ... WHERE: la comprobación de stock y la inserción son una
// sola sentencia. Junto con el FOR UPDATE del producto evita que dos salidas vean el mismo stock.
func (r *TransactionRepo) AppendGuarded(ctx context.Context, tx *entity.Transaction) (bool, error) {
	query := `
		INSERT INTO transactions (id, type, quantity, unit_price, total_value, product_id, date, idempotency_key, created_at)
		SELECT $1::uuid, $2::text, $3::bigint, $4::numeric, $5::numeric, $6::uuid, $7::timestamptz, NULLIF($8::text, ''), $9::timestamptz
		WHERE $2::text = 'IN' OR (
			SELECT COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE -quantity END), 0)
			FROM transactions WHERE product_id = $6::uuid
		) >= $3::bigint`
	cmd, err := r.q.Exec(ctx, query,
		tx.ID, tx.Type, tx.Quantity, tx.UnitPrice, tx.TotalValue, tx.ProductID, tx.Date, tx.IdempotencyKey, tx.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("producto %s: %w", tx.ProductID, domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return false, domain.ErrDuplicate
		}
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1`, id).Scan(transactionDest(&tx)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &tx, nil
}

func (r *TransactionRepo) GetDetail(ctx context.Context, id string) (*entity.TransactionDetail, error) {
	var d entity.TransactionDetail
	err := r.q.QueryRow(ctx, transactionDetailSelect+` WHERE t.id = $1`, id).Scan(transactionDetailDest(&d)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction detail: %w", err)
	}
	return &d, nil
}

func (r *TransactionRepo) FindByIdempotencyKey(ctx context.Context, key string, since time.Time) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.q.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions t
		WHERE t.idempotency_key = $1 AND t.created_at >= $2
		ORDER BY t.created_at DESC LIMIT 1`, key, since).Scan(transactionDest(&tx)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find by idempotency key: %w", err)
	}
	return &tx, nil
}

func (r *TransactionRepo) Totals(ctx context.Context, productID string) (inventory.Totals, error) {
	var t inventory.Totals
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0)::bigint,
		       COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)::bigint
		FROM transactions WHERE product_id = $1`, productID).Scan(&t.Inbound, &t.Outbound)
	if err != nil {
		return inventory.Totals{}, fmt.Errorf("sum transactions: %w", err)
	}
	return t, nil
}

// TotalsByProduct una sola pasada agrupada por producto y tipo.
func (r *TransactionRepo) TotalsByProduct(ctx context.Context, productIDs []string) (map[string]inventory.Totals, error) {
	out := make(map[string]inventory.Totals, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_id, type, SUM(quantity)::bigint
		FROM transactions WHERE product_id = ANY($1::uuid[])
		GROUP BY product_id, type`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("sum transactions by product: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, typ string
			qty     int64
		)
		if err := rows.Scan(&id, &typ, &qty); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		out[id] = out[id].Add(entity.Transaction{Type: typ, Quantity: qty})
	}
	return out, rows.Err()
}

func (r *TransactionRepo) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// List filtros opcionales por producto y tipo; más reciente primero.
func (r *TransactionRepo) List(ctx context.Context, f entity.TransactionFilter) ([]*entity.TransactionDetail, error) {
	rows, err := r.q.Query(ctx, transactionDetailSelect+`
		WHERE ($1::text = '' OR t.product_id = NULLIF($1::text, '')::uuid)
		  AND ($2::text = '' OR t.type = $2::text)
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT $3 OFFSET $4`, f.ProductID, f.Type, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	list := []*entity.TransactionDetail{}
	for rows.Next() {
		var d entity.TransactionDetail
		if err := rows.Scan(transactionDetailDest(&d)...); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
