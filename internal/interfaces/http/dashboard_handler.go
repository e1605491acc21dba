package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc     *appanalytics.DashboardUseCase
	report *appanalytics.ReportUseCase
	log    *logger.Logger
}

// NewDashboardHandler construye el handler. report puede ser nil si no hay generador de PDF.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, report *appanalytics.ReportUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, report: report, log: log}
}

// Get godoc
// @Summary      Dashboard
// @Description  KPIs, ventas de los últimos 6 meses, top de categorías y productos, stock bajo y últimas transacciones.
// @Description  Las fechas se calculan en el servidor (UTC); no recibe parámetros.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.DashboardResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetDashboard(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "dashboard.get", err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte PDF de inventario
// @Tags         dashboard
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}    binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/dashboard/report.pdf [get]
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	if h.report == nil {
		return fiber.ErrNotImplemented
	}
	pdf, err := h.report.GenerateStockReport(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "dashboard.report", err)
	}
	filename := fmt.Sprintf("inventario-%s.pdf", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdf)
}
