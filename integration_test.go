package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/queiroz-sistemas/supermercado-api/database"
	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/router"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func unwrap(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, out interface{}) {
	t.Helper()
	require.Equal(t, wantStatus, w.Code, "body: %s", w.Body.String())
	if out == nil {
		return
	}
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// TestOrderLifecycle walks the whole flow: the admin onboards a tenant,
// the tenant's agent places orders with the static token, an order is
// amended by phone, invoiced and frozen.
func TestOrderLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	r := router.SetupRouter(db)

	// Admin registers and logs in.
	unwrap(t, call(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"nome":  "Administrador",
		"email": "admin@queiroz.com.br",
		"senha": "senha-admin-123",
		"role":  models.RoleAdmin,
	}), http.StatusCreated, nil)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	unwrap(t, call(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "admin@queiroz.com.br",
		"senha": "senha-admin-123",
	}), http.StatusOK, &login)
	adminToken := login.AccessToken

	// Admin onboards a tenant.
	var created struct {
		Supermarket models.Supermarket `json:"supermarket"`
		SenhaGerada string             `json:"senha_gerada"`
	}
	unwrap(t, call(t, r, http.MethodPost, "/api/supermarkets/", adminToken, map[string]interface{}{
		"nome":     "Supermercado Queiroz",
		"email":    "contato@queiroz.com.br",
		"telefone": "1133334444",
		"cep":      "01310-100",
		"endereco": "Av. Paulista",
		"numero":   "1578",
		"bairro":   "Bela Vista",
		"cidade":   "São Paulo",
		"estado":   "SP",
	}), http.StatusCreated, &created)
	require.NotEmpty(t, created.SenhaGerada)
	tenantID := created.Supermarket.ID

	// Admin issues the static token the ordering agent will use.
	var rotated struct {
		CustomToken string `json:"custom_token"`
	}
	unwrap(t, call(t, r, http.MethodPut,
		"/api/supermarkets/"+itoa(tenantID)+"/custom-token", adminToken, nil),
		http.StatusOK, &rotated)
	agentToken := rotated.CustomToken
	require.NotEmpty(t, agentToken)

	// The agent places an order.
	var order models.Order
	unwrap(t, call(t, r, http.MethodPost, "/api/pedidos/", agentToken, map[string]interface{}{
		"nome_cliente": "Maria Souza",
		"telefone":     "(11) 98765-4321",
		"itens": []map[string]interface{}{
			{"nome_produto": "Arroz 5kg", "quantidade": 2, "preco_unitario": 10.00},
			{"nome_produto": "Feijão 1kg", "quantidade": 1, "preco_unitario": 8.50},
		},
	}), http.StatusCreated, &order)

	assert.Equal(t, tenantID, order.TenantID)
	assert.Equal(t, 1, order.Number)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.InDelta(t, 28.50, order.Total, 1e-9)
	firstID := order.ID

	// A second order gets the next number in the tenant's sequence.
	unwrap(t, call(t, r, http.MethodPost, "/api/pedidos/", agentToken, map[string]interface{}{
		"nome_cliente": "Maria Souza",
		"telefone":     "(11) 98765-4321",
		"itens": []map[string]interface{}{
			{"nome_produto": "Leite 1L", "quantidade": 2, "preco_unitario": 4.00},
		},
	}), http.StatusCreated, &order)
	assert.Equal(t, 2, order.Number)

	// The customer amends "their order" by phone: the newest pending one.
	unwrap(t, call(t, r, http.MethodPut, "/api/pedidos/telefone/11987654321", agentToken,
		map[string]interface{}{
			"itens": []map[string]interface{}{
				{"nome_produto": "Leite 1L", "quantidade": 4, "preco_unitario": 4.00},
			},
		}), http.StatusOK, &order)
	assert.Equal(t, 2, order.Number)
	assert.True(t, order.Modified)
	assert.InDelta(t, 16.00, order.Total, 1e-9)

	// Both orders landed on a single upserted client.
	var count int64
	db.Model(&models.Client{}).Where("tenant_id = ?", tenantID).Count(&count)
	assert.EqualValues(t, 1, count)

	// The panel user invoices the first order; it becomes immutable.
	unwrap(t, call(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "contato@queiroz.com.br",
		"senha": created.SenhaGerada,
	}), http.StatusOK, &login)
	panelToken := login.AccessToken

	unwrap(t, call(t, r, http.MethodPut, "/api/pedidos/"+itoa(firstID), panelToken,
		map[string]interface{}{"status": "faturado"}), http.StatusOK, &order)
	assert.Equal(t, models.OrderStatusInvoiced, order.Status)

	w := call(t, r, http.MethodPut, "/api/pedidos/"+itoa(firstID), panelToken,
		map[string]interface{}{"nome_cliente": "Outra Pessoa"})
	require.Equal(t, http.StatusPreconditionFailed, w.Code, "body: %s", w.Body.String())

	// By-phone resolution skips the invoiced order entirely.
	unwrap(t, call(t, r, http.MethodGet, "/api/pedidos/?status=pendente", panelToken, nil),
		http.StatusOK, &[]models.Order{})

	// Admin bills the tenant for the month.
	var invoice models.Invoice
	unwrap(t, call(t, r, http.MethodPost,
		"/api/admin/financeiro/"+itoa(tenantID)+"/fatura", adminToken,
		map[string]interface{}{"mes_referencia": "2026-08"}), http.StatusCreated, &invoice)
	assert.Equal(t, models.InvoiceStatusPending, invoice.Status)
	assert.InDelta(t, 99.90, invoice.Value, 1e-9)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
