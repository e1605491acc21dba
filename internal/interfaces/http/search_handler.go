package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// SearchHandler búsqueda global.
type SearchHandler struct {
	uc  *usecase.SearchUseCase
	log *logger.Logger
}

func NewSearchHandler(uc *usecase.SearchUseCase, log *logger.Logger) *SearchHandler {
	return &SearchHandler{uc: uc, log: log}
}

// Search godoc
// @Summary      Búsqueda global
// @Description  Productos, categorías y proveedores que contienen q (sin distinguir mayúsculas).
// @Tags         search
// @Produce      json
// @Security     BearerAuth
// @Param        q      query     string  true   "Texto a buscar"
// @Param        limit  query     int     false  "Resultados por tipo (default 5, máx 20)"
// @Success      200    {array}   dto.SearchResultDTO
// @Router       /api/search [get]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, h.log, "search", err)
	}
	return c.JSON(out)
}
