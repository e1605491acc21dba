package usecase

import "context"

// CatalogListener recibe avisos de cambios de catálogo que afectan a los agregados
// (precios, altas y bajas). Lo implementa la caché del dashboard.
type CatalogListener interface {
	CatalogChanged(ctx context.Context)
}

func notifyCatalog(ctx context.Context, listeners []CatalogListener) {
	for _, l := range listeners {
		l.CatalogChanged(ctx)
	}
}
