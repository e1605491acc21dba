// Package inventory contiene la lógica pura del ledger: derivación de stock y políticas de costo.
package inventory

import "github.com/jhoicas/stock-ledger-api/internal/domain/entity"

// LowStockThreshold productos con stock derivado por debajo de este valor se reportan como stock bajo.
const LowStockThreshold int64 = 10

// Totals sumas de cantidades por tipo para un producto.
type Totals struct {
	Inbound  int64
	Outbound int64
}

// Stock devuelve entradas menos salidas.
func (t Totals) Stock() int64 {
	return t.Inbound - t.Outbound
}

// Add acumula una transacción. Tipos desconocidos se ignoran.
func (t Totals) Add(tx entity.Transaction) Totals {
	switch tx.Type {
	case entity.TransactionTypeIN:
		t.Inbound += tx.Quantity
	case entity.TransactionTypeOUT:
		t.Outbound += tx.Quantity
	}
	return t
}

// TotalsOf suma un conjunto de transacciones. El resultado no depende del orden.
func TotalsOf(txs []entity.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		t = t.Add(tx)
	}
	return t
}

// HasSufficient indica si hay stock para cubrir requested.
func HasSufficient(stock, requested int64) bool {
	return stock >= requested
}
