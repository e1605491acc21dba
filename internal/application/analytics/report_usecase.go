package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

// ReportGenerator genera la representación PDF del dashboard.
type ReportGenerator interface {
	GenerateDashboardReport(d *dto.DashboardResponse) ([]byte, error)
}

// ReportUseCase reporte PDF con las cifras del dashboard.
type ReportUseCase struct {
	dashboard *DashboardUseCase
	generator ReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(dashboard *DashboardUseCase, generator ReportGenerator) *ReportUseCase {
	return &ReportUseCase{dashboard: dashboard, generator: generator}
}

// GenerateStockReport calcula el dashboard y lo renderiza como PDF.
func (uc *ReportUseCase) GenerateStockReport(ctx context.Context) ([]byte, error) {
	d, err := uc.dashboard.GetDashboard(ctx)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.generator.GenerateDashboardReport(d)
	if err != nil {
		return nil, fmt.Errorf("generar reporte PDF: %w", err)
	}
	return pdf, nil
}
