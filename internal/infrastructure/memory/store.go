// Package memory implementa todos los puertos de persistencia en memoria.
// Se usa con STORE=memory y en los tests de los casos de uso y handlers.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Store estado completo en memoria.
//
// writeMu admite un solo escritor a la vez: una escritura suelta o una unidad de trabajo
// completa de TxRunner. mu protege data para lecturas concurrentes.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	data    *data
}

type data struct {
	products     map[string]entity.Product
	categories   map[string]entity.Category
	suppliers    map[string]entity.Supplier
	users        map[string]entity.User
	transactions []entity.Transaction // orden de inserción; solo append
}

func (d *data) clone() *data {
	c := &data{
		products:     make(map[string]entity.Product, len(d.products)),
		categories:   make(map[string]entity.Category, len(d.categories)),
		suppliers:    make(map[string]entity.Supplier, len(d.suppliers)),
		users:        make(map[string]entity.User, len(d.users)),
		transactions: append([]entity.Transaction(nil), d.transactions...),
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	return c
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: &data{
		products:   make(map[string]entity.Product),
		categories: make(map[string]entity.Category),
		suppliers:  make(map[string]entity.Supplier),
		users:      make(map[string]entity.User),
	}}
}

func (s *Store) read(ctx context.Context, fn func(d *data) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write aplica fn con el estado bloqueado. inTx indica que el llamador ya tiene writeMu.
func (s *Store) write(ctx context.Context, inTx bool, fn func(d *data) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !inTx {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Transactions repositorio del ledger.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Dashboard consultas de agregación.
func (s *Store) Dashboard() *DashboardRepo { return &DashboardRepo{s: s} }

// TxRunner unidad de trabajo sobre el store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las unidades de trabajo y restaura el estado si fn falla.
type TxRunner struct {
	s *Store
}

// Run ejecuta fn con repos atados a la unidad de trabajo. Error → el estado vuelve al de antes.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	r.s.mu.RLock()
	snapshot := r.s.data.clone()
	r.s.mu.RUnlock()

	if err := fn(&ProductRepo{s: r.s, inTx: true}, &TransactionRepo{s: r.s, inTx: true}); err != nil {
		r.s.mu.Lock()
		r.s.data = snapshot
		r.s.mu.Unlock()
		return err
	}
	return nil
}
