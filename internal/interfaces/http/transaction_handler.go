package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// HeaderIdempotencyKey alternativa al campo idempotency_key del body.
const HeaderIdempotencyKey = "Idempotency-Key"

// RejectionRecorder cuenta transacciones rechazadas por motivo (métricas).
type RejectionRecorder interface {
	LedgerRejected(reason string)
}

// TransactionHandler registra y consulta transacciones del ledger.
type TransactionHandler struct {
	register  *inventory.RegisterTransactionUseCase
	query     *inventory.LedgerQueryUseCase
	log       *logger.Logger
	rejection RejectionRecorder
}

// NewTransactionHandler construye el handler. rejection puede ser nil.
func NewTransactionHandler(
	register *inventory.RegisterTransactionUseCase,
	query *inventory.LedgerQueryUseCase,
	log *logger.Logger,
	rejection RejectionRecorder,
) *TransactionHandler {
	return &TransactionHandler{register: register, query: query, log: log, rejection: rejection}
}

// Create godoc
// @Summary      Registrar transacción
// @Description  Agrega una entrada (IN) o salida (OUT) al ledger. Una salida que deje el stock negativo se rechaza.
// @Description  total_value se recalcula como quantity × unit_price; si se envía y no coincide, se rechaza.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                        false  "Clave de idempotencia"
// @Param        body             body      dto.CreateTransactionRequest  true   "Transacción"
// @Success      201              {object}  dto.TransactionResponse
// @Success      200              {object}  dto.TransactionResponse  "Reintento con la misma clave"
// @Failure      400              {object}  dto.ErrorResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      409              {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = c.Get(HeaderIdempotencyKey)
	}

	out, err := h.register.Register(c.UserContext(), in)
	if err != nil {
		h.reject(err)
		return respondError(c, h.log, "transaction.create", err)
	}
	if out.Replayed {
		return c.Status(fiber.StatusOK).JSON(out)
	}
	h.log.Info().
		Str("transaction_id", out.ID).
		Str("product_id", out.ProductID).
		Str("type", out.Type).
		Int64("quantity", out.Quantity).
		Str("user_id", GetUserID(c)).
		Msg("transacción registrada")
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *TransactionHandler) reject(err error) {
	if h.rejection == nil {
		return
	}
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		h.rejection.LedgerRejected(metrics.RejectInsufficientStock)
	case errors.Is(err, domain.ErrIdempotencyKeyReused):
		h.rejection.LedgerRejected(metrics.RejectIdempotency)
	case errors.Is(err, domain.ErrInvalidInput):
		h.rejection.LedgerRejected(metrics.RejectValidation)
	case errors.Is(err, domain.ErrNotFound):
		h.rejection.LedgerRejected(metrics.RejectNotFound)
	}
}

// List godoc
// @Summary      Listar transacciones
// @Description  Más recientes primero, con producto, categoría y proveedor.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  query     string  false  "Filtrar por producto"
// @Param        type        query     string  false  "IN | OUT"
// @Param        limit       query     int     false  "Límite (default 20, máx 100)"
// @Param        offset      query     int     false  "Desplazamiento"
// @Success      200         {object}  dto.TransactionListResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var in dto.TransactionListRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	in.Limit, in.Offset = pagination(c)
	out, err := h.query.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, "transaction.list", err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener transacción
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "transaction.get", err)
	}
	return c.JSON(out)
}
