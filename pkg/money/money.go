// Package money aritmética decimal exacta para precios y totales.
// Los montos se redondean a 2 decimales solo en el borde (respuestas y comparación de totales).
package money

import "github.com/shopspring/decimal"

// Places decimales de presentación.
const Places int32 = 2

// Round2 redondea a 2 decimales (half away from zero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// LineTotal cantidad × precio unitario, sin redondear.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// Sum suma exacta de varios montos.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// EqualAtCents compara dos montos tras redondearlos a 2 decimales.
func EqualAtCents(a, b decimal.Decimal) bool {
	return Round2(a).Equal(Round2(b))
}
