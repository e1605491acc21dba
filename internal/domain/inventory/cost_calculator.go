package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CostPolicy define qué costo unitario se usa al calcular la utilidad bruta de una salida.
type CostPolicy string

const (
	// CostPolicyCurrentBuyPrice usa el precio de compra vigente del producto al momento de la consulta.
	CostPolicyCurrentBuyPrice CostPolicy = "current_buy_price"
	// CostPolicyAverageInboundCost usa el promedio ponderado de las entradas registradas hasta la fecha de la salida.
	CostPolicyAverageInboundCost CostPolicy = "average_inbound_cost"
)

// ParseCostPolicy valida el nombre de una política. Vacío equivale a CostPolicyCurrentBuyPrice.
func ParseCostPolicy(s string) (CostPolicy, error) {
	switch CostPolicy(s) {
	case "", CostPolicyCurrentBuyPrice:
		return CostPolicyCurrentBuyPrice, nil
	case CostPolicyAverageInboundCost:
		return CostPolicyAverageInboundCost, nil
	}
	return "", fmt.Errorf("política de costo desconocida: %q", s)
}

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((CantAcumulada * CostoActual) + (CantEntrada * CostoEntrada)) / (CantAcumulada + CantEntrada)
func CostCalculator(cantAcumulada, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := cantAcumulada.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := cantAcumulada.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// AverageInboundCost promedio ponderado de las entradas con fecha <= asOf.
// ok es false si no hay entradas en ese rango.
func AverageInboundCost(txs []entity.Transaction, asOf time.Time) (cost decimal.Decimal, ok bool) {
	ins := make([]entity.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == entity.TransactionTypeIN && !tx.Date.After(asOf) {
			ins = append(ins, tx)
		}
	}
	if len(ins) == 0 {
		return decimal.Zero, false
	}
	sort.SliceStable(ins, func(i, j int) bool { return ins[i].Date.Before(ins[j].Date) })

	acc := decimal.Zero
	cost = decimal.Zero
	for _, tx := range ins {
		qty := decimal.NewFromInt(tx.Quantity)
		cost = CostCalculator(acc, cost, qty, tx.UnitPrice)
		acc = acc.Add(qty)
	}
	return cost, true
}
