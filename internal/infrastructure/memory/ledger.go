package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo ledger en memoria: solo append.
type TransactionRepo struct {
	s    *Store
	inTx bool
}

func totalsFor(d *data, productID string) inventory.Totals {
	var t inventory.Totals
	for _, tx := range d.transactions {
		if tx.ProductID == productID {
			t = t.Add(tx)
		}
	}
	return t
}

// AppendGuarded comprueba stock e inserta bajo el mismo bloqueo de escritura.
func (r *TransactionRepo) AppendGuarded(ctx context.Context, tx *entity.Transaction) (bool, error) {
	inserted := false
	err := r.s.write(ctx, r.inTx, func(d *data) error {
		if _, ok := d.products[tx.ProductID]; !ok {
			return domain.ErrNotFound
		}
		for _, existing := range d.transactions {
			if existing.ID == tx.ID {
				return domain.ErrDuplicate
			}
		}
		if tx.Type == entity.TransactionTypeOUT && !inventory.HasSufficient(totalsFor(d, tx.ProductID).Stock(), tx.Quantity) {
			return nil
		}
		d.transactions = append(d.transactions, *tx)
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.s.read(ctx, func(d *data) error {
		for _, tx := range d.transactions {
			if tx.ID == id {
				tx := tx
				out = &tx
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *TransactionRepo) GetDetail(ctx context.Context, id string) (*entity.TransactionDetail, error) {
	var out *entity.TransactionDetail
	err := r.s.read(ctx, func(d *data) error {
		for _, tx := range d.transactions {
			if tx.ID == id {
				out = &entity.TransactionDetail{Transaction: tx, Product: productDetail(d, d.products[tx.ProductID])}
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *TransactionRepo) FindByIdempotencyKey(ctx context.Context, key string, since time.Time) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.s.read(ctx, func(d *data) error {
		for i := len(d.transactions) - 1; i >= 0; i-- {
			tx := d.transactions[i]
			if tx.IdempotencyKey == key && !tx.CreatedAt.Before(since) {
				out = &tx
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *TransactionRepo) Totals(ctx context.Context, productID string) (inventory.Totals, error) {
	var t inventory.Totals
	err := r.s.read(ctx, func(d *data) error {
		t = totalsFor(d, productID)
		return nil
	})
	return t, err
}

func (r *TransactionRepo) TotalsByProduct(ctx context.Context, productIDs []string) (map[string]inventory.Totals, error) {
	out := make(map[string]inventory.Totals)
	want := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
	}
	err := r.s.read(ctx, func(d *data) error {
		for _, tx := range d.transactions {
			if want[tx.ProductID] {
				out[tx.ProductID] = out[tx.ProductID].Add(tx)
			}
		}
		return nil
	})
	return out, err
}

func (r *TransactionRepo) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.s.read(ctx, func(d *data) error {
		for _, tx := range d.transactions {
			if tx.ProductID == productID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// newerFirst fecha descendente; empates por orden de inserción inverso.
func newerFirst(txs []entity.Transaction) []entity.Transaction {
	out := make([]entity.Transaction, len(txs))
	for i := range txs {
		out[i] = txs[len(txs)-1-i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r *TransactionRepo) List(ctx context.Context, filter entity.TransactionFilter) ([]*entity.TransactionDetail, error) {
	out := []*entity.TransactionDetail{}
	err := r.s.read(ctx, func(d *data) error {
		var matched []*entity.TransactionDetail
		for _, tx := range newerFirst(d.transactions) {
			if filter.ProductID != "" && tx.ProductID != filter.ProductID {
				continue
			}
			if filter.Type != "" && tx.Type != filter.Type {
				continue
			}
			matched = append(matched, &entity.TransactionDetail{Transaction: tx, Product: productDetail(d, d.products[tx.ProductID])})
		}
		out = window(matched, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}
