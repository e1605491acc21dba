// Package pdf genera el reporte de inventario en PDF a partir del dashboard.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Reporte de inventario  │  Fecha de corte           │
//	│  KPIs: Productos / Valor stock / Ventas mes / Ganancia      │
//	│  VENTAS: últimos 6 meses                                    │
//	│  TABLA: Más vendidos                                        │
//	│  TABLA: Stock bajo                                          │
//	│  TABLA: Transacciones recientes                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

var _ analytics.ReportGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa analytics.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	appName string
}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator(appName string) *MarotoReportGenerator {
	return &MarotoReportGenerator{appName: appName}
}

// GenerateDashboardReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateDashboardReport(d *dto.DashboardResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de inventario", true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.appName, d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(kpiRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("Ventas por mes"))
	m.AddRows(salesChartRows(d.SalesChart)...)

	m.AddRows(sectionTitle("Productos más vendidos"))
	m.AddRows(tableHeader([]string{"Producto", "Categoría", "Unidades", "Ingresos"}, []int{5, 3, 2, 2}))
	for _, p := range d.BestSellingProducts {
		m.AddRows(tableRow([]string{p.Name, p.Category, strconv.FormatInt(p.Quantity, 10), formatMoney(p.TotalValue)}, []int{5, 3, 2, 2}, nil))
	}

	m.AddRows(sectionTitle("Stock bajo"))
	if len(d.LowStockProducts) == 0 {
		m.AddRows(emptyRow("Sin productos bajo el umbral"))
	} else {
		m.AddRows(tableHeader([]string{"Producto", "Precio venta", "Stock"}, []int{7, 3, 2}))
		for _, p := range d.LowStockProducts {
			m.AddRows(tableRow([]string{p.Name, formatMoney(p.SellPrice), strconv.FormatInt(p.Stock, 10)}, []int{7, 3, 2}, colorAlert))
		}
	}

	m.AddRows(sectionTitle("Transacciones recientes"))
	m.AddRows(tableHeader([]string{"Fecha", "Tipo", "Producto", "Cant.", "Valor"}, []int{2, 1, 5, 2, 2}))
	for _, t := range d.RecentTransactions {
		m.AddRows(tableRow([]string{
			t.Date.UTC().Format("02/01/2006"), t.Type, t.Product, strconv.FormatInt(t.Quantity, 10), formatMoney(t.Value),
		}, []int{2, 1, 5, 2, 2}, nil))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(appName string, d *dto.DashboardResponse) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("REPORTE DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(appName, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Corte: "+d.GeneratedAt.UTC().Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Costo: "+d.CostPolicy, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// kpiRow: cuatro indicadores en columnas iguales.
func kpiRow(d *dto.DashboardResponse) core.Row {
	kpi := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 6, Align: align.Center}),
		)
	}
	return row.New(16).Add(
		kpi("Productos", strconv.FormatInt(d.TotalProducts, 10)),
		kpi("Valor del stock", formatMoney(d.TotalStockValue)),
		kpi("Ventas del mes", formatMoney(d.SalesSummary.MonthSales)),
		kpi("Ganancia 30 días", formatMoney(d.GrossProfit)),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(9).Add(col.New(12).Add(
		text.New(strings.ToUpper(title), props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3,
		}),
	))
}

func salesChartRows(points []dto.MonthlySalesDTO) []core.Row {
	rows := make([]core.Row, 0, len(points))
	for _, p := range points {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(p.Label, props.Text{Size: 8, Left: 1})),
			col.New(4).Add(text.New(formatMoney(p.Total), props.Text{Size: 8, Align: align.Right})),
			col.New(4),
		))
	}
	return rows
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, len(labels))
	for i, l := range labels {
		cols[i] = col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 1, Left: 1, Color: colorPrimary,
		}))
	}
	return row.New(6).Add(cols...)
}

func tableRow(values []string, sizes []int, color *props.Color) core.Row {
	cols := make([]core.Col, len(values))
	for i, v := range values {
		cols[i] = col.New(sizes[i]).Add(text.New(v, props.Text{Size: 8, Top: 1, Left: 1, Color: color}))
	}
	return row.New(5).Add(cols...)
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(text.New(msg, props.Text{Size: 8, Color: colorGray, Top: 1})))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney "$" + miles con punto y decimales con coma. Ej: 1234567.5 → "$1.234.567,50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + "$" + groupThousands(intPart) + "," + frac
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
