package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app      *fiber.App
	adminTok string
	operTok  string
	rejected []string
}

func (s *testServer) LedgerRejected(reason string) { s.rejected = append(s.rejected, reason) }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()

	productRepo := store.Products()
	categoryRepo := store.Categories()
	supplierRepo := store.Suppliers()
	txRepo := store.Transactions()
	txRunner := store.TxRunner()

	stock := inventory.NewStockReader(txRepo)
	validator := inventory.NewTransactionValidator(productRepo, stock, time.Now)
	dashboardUC := appanalytics.NewDashboardUseCase(store.Dashboard(), productRepo, supplierRepo, domaininv.CostPolicyCurrentBuyPrice)
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	s := &testServer{app: fiber.New()}
	apphttp.Router(s.app, apphttp.RouterDeps{
		ProductUC:           usecase.NewProductUseCase(productRepo, categoryRepo, supplierRepo, stock, txRunner),
		CategoryUC:          usecase.NewCategoryUseCase(categoryRepo, productRepo),
		SupplierUC:          usecase.NewSupplierUseCase(supplierRepo, productRepo),
		SearchUC:            usecase.NewSearchUseCase(productRepo, categoryRepo, supplierRepo),
		RegisterTransaction: inventory.NewRegisterTransactionUseCase(txRunner, txRepo, validator, 24*time.Hour),
		LedgerQuery:         inventory.NewLedgerQueryUseCase(txRepo, productRepo, stock),
		DashboardUC:         dashboardUC,
		ReportUC:            appanalytics.NewReportUseCase(dashboardUC, pdf.NewMarotoReportGenerator("Stock Ledger")),
		AuthUC:              authUC,
		Rejections:          s,
		LedgerFeed:          func(c *fiber.Ctx) error { return c.SendString("feed") },
		Log:                 log,
		JWTSecret:           testJWTSecret,
	})

	ctx := context.Background()
	_, err := authUC.CreateUser(ctx, "admin@goatech.com", "admin123", "Admin", "admin")
	require.NoError(t, err)
	_, err = authUC.CreateUser(ctx, "bodega@goatech.com", "bodega123", "Bodega", "operator")
	require.NoError(t, err)

	s.adminTok = s.login(t, "admin@goatech.com", "admin123")
	s.operTok = s.login(t, "bodega@goatech.com", "bodega123")
	return s
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := s.do(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "login debe responder 200")
	var out map[string]interface{}
	decode(t, resp, &out)
	tok, _ := out["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func (s *testServer) do(t *testing.T, token, method, path string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// seedCatalog crea categoría, proveedor y un producto; devuelve sus ids.
func (s *testServer) seedCatalog(t *testing.T) (categoryID, supplierID, productID string) {
	t.Helper()
	var m map[string]interface{}

	resp := s.do(t, s.adminTok, http.MethodPost, "/api/categories", map[string]string{"name": "Bebidas"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &m)
	categoryID = m["id"].(string)

	resp = s.do(t, s.adminTok, http.MethodPost, "/api/suppliers", map[string]string{
		"name": "Distribuidora Andina", "contact": "Laura Gómez", "phone": "3001234567", "email": "ventas@andina.co",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &m)
	supplierID = m["id"].(string)

	resp = s.do(t, s.adminTok, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Agua 600ml", "buy_price": 10, "sell_price": 25,
		"category_id": categoryID, "supplier_id": supplierID,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &m)
	productID = m["id"].(string)
	return categoryID, supplierID, productID
}

func (s *testServer) postTx(t *testing.T, typ, productID string, qty int64, unitPrice float64) *http.Response {
	t.Helper()
	return s.do(t, s.adminTok, http.MethodPost, "/api/transactions", map[string]interface{}{
		"type": typ, "product_id": productID, "quantity": qty, "unit_price": unitPrice,
	}, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_EntradaSalidaYSobreventa(t *testing.T) {
	s := newTestServer(t)
	_, _, productID := s.seedCatalog(t)

	resp := s.postTx(t, "IN", productID, 10, 10)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.postTx(t, "OUT", productID, 15, 25)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "una salida mayor al stock debe rechazarse")
	var errBody struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	}
	decode(t, resp, &errBody)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.EqualValues(t, 10, errBody.Details["available"])
	assert.EqualValues(t, 5, errBody.Details["shortfall"])

	resp = s.postTx(t, "OUT", productID, 4, 25)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, s.adminTok, http.MethodGet, "/api/products/"+productID+"/stock", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stock struct {
		Inbound  int64 `json:"inbound"`
		Outbound int64 `json:"outbound"`
		Stock    int64 `json:"stock"`
	}
	decode(t, resp, &stock)
	assert.Equal(t, int64(10), stock.Inbound)
	assert.Equal(t, int64(4), stock.Outbound)
	assert.Equal(t, int64(6), stock.Stock)

	assert.Equal(t, []string{"insufficient_stock"}, s.rejected, "el rechazo debe contarse por motivo")
}

func TestLedger_ValidacionDevuelveRutaDelCampo(t *testing.T) {
	s := newTestServer(t)
	_, _, productID := s.seedCatalog(t)

	resp := s.postTx(t, "IN", productID, 0, 10)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Code  string `json:"code"`
		Error []struct {
			Path    string `json:"path"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
	require.NotEmpty(t, body.Error)
	assert.Equal(t, "quantity", body.Error[0].Path)
}

func TestLedger_TotalQueNoCoincideSeRechaza(t *testing.T) {
	s := newTestServer(t)
	_, _, productID := s.seedCatalog(t)

	resp := s.do(t, s.adminTok, http.MethodPost, "/api/transactions", map[string]interface{}{
		"type": "IN", "product_id": productID, "quantity": 3, "unit_price": 10, "total_value": 31,
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "total_value")
}

func TestLedger_ProductoInexistente_Retorna404(t *testing.T) {
	s := newTestServer(t)
	resp := s.postTx(t, "IN", "7b0c7c1e-8f7e-4a55-9d57-6a4f0f1e2d3c", 1, 1)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLedger_IdempotencyKeyEnHeaderRepiteSinDuplicar(t *testing.T) {
	s := newTestServer(t)
	_, _, productID := s.seedCatalog(t)

	body := map[string]interface{}{"type": "IN", "product_id": productID, "quantity": 5, "unit_price": 10}
	headers := map[string]string{"Idempotency-Key": "compra-001"}

	first := s.do(t, s.adminTok, http.MethodPost, "/api/transactions", body, headers)
	require.Equal(t, http.StatusCreated, first.StatusCode)
	var a map[string]interface{}
	decode(t, first, &a)

	second := s.do(t, s.adminTok, http.MethodPost, "/api/transactions", body, headers)
	require.Equal(t, http.StatusOK, second.StatusCode, "un reintento debe devolver 200")
	var b map[string]interface{}
	decode(t, second, &b)
	assert.Equal(t, a["id"], b["id"])
	assert.Equal(t, true, b["replayed"])

	body["quantity"] = 6
	third := s.do(t, s.adminTok, http.MethodPost, "/api/transactions", body, headers)
	defer third.Body.Close()
	assert.Equal(t, http.StatusConflict, third.StatusCode, "misma clave con otra operación debe dar 409")

	resp := s.do(t, s.adminTok, http.MethodGet, "/api/transactions?product_id="+productID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Items []map[string]interface{} `json:"items"`
	}
	decode(t, resp, &list)
	assert.Len(t, list.Items, 1, "el reintento no debe insertar otra transacción")
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo y guardas de integridad
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalogo_GuardasDeBorrado(t *testing.T) {
	s := newTestServer(t)
	categoryID, supplierID, productID := s.seedCatalog(t)

	resp := s.do(t, s.adminTok, http.MethodDelete, "/api/categories/"+categoryID, nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "CATEGORY_IN_USE")

	resp = s.do(t, s.adminTok, http.MethodDelete, "/api/suppliers/"+supplierID, nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "SUPPLIER_IN_USE")

	resp = s.postTx(t, "IN", productID, 2, 10)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, s.adminTok, http.MethodDelete, "/api/products/"+productID, nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "PRODUCT_HAS_STOCK")

	resp = s.postTx(t, "OUT", productID, 2, 25)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, s.adminTok, http.MethodDelete, "/api/products/"+productID, nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "PRODUCT_HAS_HISTORY")
}

func TestCatalogo_CategoriaDuplicadaSinDistinguirMayusculas(t *testing.T) {
	s := newTestServer(t)
	s.seedCatalog(t)

	resp := s.do(t, s.adminTok, http.MethodPost, "/api/categories", map[string]string{"name": "  BEBIDAS "}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCatalogo_ProductoInexistente_Retorna404(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, s.adminTok, http.MethodGet, "/api/products/7b0c7c1e-8f7e-4a55-9d57-6a4f0f1e2d3c", nil, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCatalogo_PrecioVentaMenorAlDeCompra(t *testing.T) {
	s := newTestServer(t)
	categoryID, supplierID, _ := s.seedCatalog(t)

	resp := s.do(t, s.adminTok, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Jugo", "buy_price": 30, "sell_price": 20,
		"category_id": categoryID, "supplier_id": supplierID,
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "sell_price")
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard, reporte y búsqueda
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboard_SeisMesesYReportePDF(t *testing.T) {
	s := newTestServer(t)
	_, _, productID := s.seedCatalog(t)
	resp := s.postTx(t, "IN", productID, 5, 10)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, s.adminTok, http.MethodGet, "/api/dashboard", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var d struct {
		TotalProducts int64                    `json:"total_products"`
		SalesChart    []map[string]interface{} `json:"sales_chart"`
		LowStock      []map[string]interface{} `json:"low_stock_products"`
	}
	decode(t, resp, &d)
	assert.Equal(t, int64(1), d.TotalProducts)
	assert.Len(t, d.SalesChart, 6, "el gráfico siempre tiene 6 meses")
	assert.Len(t, d.LowStock, 1, "stock 5 < 10 es stock bajo")

	resp = s.do(t, s.adminTok, http.MethodGet, "/api/dashboard/report.pdf", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestBusqueda_EncuentraPorTipo(t *testing.T) {
	s := newTestServer(t)
	s.seedCatalog(t)

	resp := s.do(t, s.adminTok, http.MethodGet, "/api/search?q=andina", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results []map[string]interface{}
	decode(t, resp, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "supplier", results[0]["type"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_RutasProtegidasSinToken(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, "", http.MethodGet, "/api/products", nil, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_LoginConPasswordIncorrecto(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@goatech.com", "password": "otra"}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_SoloAdminCreaUsuarios(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"email": "nuevo@goatech.com", "password": "password123", "name": "Nuevo"}

	resp := s.do(t, s.operTok, http.MethodPost, "/api/auth/users", body, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, s.adminTok, http.MethodPost, "/api/auth/users", body, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, s.adminTok, http.MethodPost, "/api/auth/users", body, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "email repetido debe dar 409")
}

// ──────────────────────────────────────────────────────────────────────────────
// Feed WebSocket
// ──────────────────────────────────────────────────────────────────────────────

func (s *testServer) upgrade(t *testing.T, path string, headers map[string]string) *http.Response {
	t.Helper()
	h := map[string]string{"Connection": "Upgrade", "Upgrade": "websocket", "Sec-WebSocket-Version": "13"}
	for k, v := range headers {
		h[k] = v
	}
	return s.do(t, "", http.MethodGet, path, nil, h)
}

func TestFeed_SinTokenRechazaElUpgrade(t *testing.T) {
	s := newTestServer(t)

	resp := s.upgrade(t, "/ws/ledger", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var e map[string]interface{}
	decode(t, resp, &e)
	assert.Equal(t, "MISSING_TOKEN", e["code"])

	resp = s.upgrade(t, "/ws/ledger?token=no-es-un-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFeed_ConTokenLlegaAlHandler(t *testing.T) {
	s := newTestServer(t)

	resp := s.upgrade(t, "/ws/ledger?token="+s.operTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "feed", string(body))

	resp = s.upgrade(t, "/ws/ledger", map[string]string{"Authorization": "Bearer " + s.adminTok})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, s.adminTok, http.MethodGet, "/ws/ledger", nil, nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode, "sin cabeceras de upgrade no se atiende")
}
