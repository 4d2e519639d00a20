package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queiroz-sistemas/supermercado-api/models"
)

func supermarketPayload(name string) map[string]interface{} {
	return map[string]interface{}{
		"nome":     name,
		"email":    fmt.Sprintf("%s@exemplo.com.br", name),
		"telefone": "1144445555",
		"cep":      "01310-100",
		"endereco": "Av. Paulista",
		"numero":   "1578",
		"bairro":   "Bela Vista",
		"cidade":   "São Paulo",
		"estado":   "SP",
		"cnpj":     fmt.Sprintf("12345678%s0001", name[len(name)-2:]),
	}
}

type createdMarket struct {
	Supermarket models.Supermarket `json:"supermarket"`
	SenhaGerada string             `json:"senha_gerada"`
}

func TestCreateSupermarketGeneratesCredentials(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)

	w := perform(t, r, http.MethodPost, "/api/supermarkets/", adminToken, supermarketPayload("novo01"))
	requireStatus(t, w, http.StatusCreated)

	var created createdMarket
	decodeData(t, w, &created)
	assert.NotZero(t, created.Supermarket.ID)
	assert.NotEmpty(t, created.SenhaGerada)
	assert.Equal(t, "basico", created.Supermarket.Plan)
	assert.True(t, created.Supermarket.Active)

	// The generated password logs the panel user straight in.
	w = perform(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": created.Supermarket.Email,
		"senha": created.SenhaGerada,
	})
	requireStatus(t, w, http.StatusOK)

	var login struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Role     string `json:"role"`
			TenantID *uint  `json:"tenant_id"`
		} `json:"user"`
	}
	decodeData(t, w, &login)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, models.RoleSupermarket, login.User.Role)
	require.NotNil(t, login.User.TenantID)
	assert.Equal(t, created.Supermarket.ID, *login.User.TenantID)
}

func TestCreateSupermarketDuplicateEmail(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)

	requireStatus(t, perform(t, r, http.MethodPost, "/api/supermarkets/", adminToken,
		supermarketPayload("dup01")), http.StatusCreated)
	requireStatus(t, perform(t, r, http.MethodPost, "/api/supermarkets/", adminToken,
		supermarketPayload("dup01")), http.StatusConflict)
}

func TestSupermarketRoutesAreAdminOnly(t *testing.T) {
	r, db := newTestEnv(t)
	_, sessionToken, staticToken := seedTenant(t, db, "mercado-o")

	w := perform(t, r, http.MethodGet, "/api/supermarkets/", sessionToken, nil)
	requireStatus(t, w, http.StatusForbidden)

	w = perform(t, r, http.MethodGet, "/api/supermarkets/", staticToken, nil)
	requireStatus(t, w, http.StatusForbidden)
}

func TestListSupermarketsSearchAndFilter(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)
	seedTenant(t, db, "padaria-central")
	market, _, _ := seedTenant(t, db, "mercearia-sul")
	require.NoError(t, db.Model(market).Update("ativo", false).Error)

	w := perform(t, r, http.MethodGet, "/api/supermarkets/?search=padaria", adminToken, nil)
	requireStatus(t, w, http.StatusOK)
	var markets []models.Supermarket
	decodeData(t, w, &markets)
	require.Len(t, markets, 1)
	assert.Equal(t, "padaria-central", markets[0].Name)

	w = perform(t, r, http.MethodGet, "/api/supermarkets/?ativo=false", adminToken, nil)
	requireStatus(t, w, http.StatusOK)
	decodeData(t, w, &markets)
	require.Len(t, markets, 1)
	assert.Equal(t, "mercearia-sul", markets[0].Name)
}

func TestUpdateSupermarketRecordsHistory(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)
	market, _, _ := seedTenant(t, db, "mercado-p")

	path := fmt.Sprintf("/api/supermarkets/%d", market.ID)
	w := perform(t, r, http.MethodPut, path, adminToken, map[string]interface{}{
		"nome":  "Mercado P Renomeado",
		"plano": "premium",
	})
	requireStatus(t, w, http.StatusOK)

	var updated models.Supermarket
	decodeData(t, w, &updated)
	assert.Equal(t, "Mercado P Renomeado", updated.Name)
	assert.Equal(t, "premium", updated.Plan)

	w = perform(t, r, http.MethodGet, path+"/history", adminToken, nil)
	requireStatus(t, w, http.StatusOK)
	var history []models.SupermarketHistory
	decodeData(t, w, &history)
	require.Len(t, history, 2)

	fields := []string{history[0].Field, history[1].Field}
	assert.Contains(t, fields, "nome")
	assert.Contains(t, fields, "plano")
}

func TestDeleteSupermarketWithDependentsNeedsForce(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)
	market, _, staticToken := seedTenant(t, db, "mercado-q")

	requireStatus(t, perform(t, r, http.MethodPost, "/api/pedidos/", staticToken, orderPayload()), http.StatusCreated)

	path := fmt.Sprintf("/api/supermarkets/%d", market.ID)

	// Without force: refused, tenant survives.
	w := perform(t, r, http.MethodDelete, path, adminToken, nil)
	requireStatus(t, w, http.StatusBadRequest)

	// Force with the wrong admin password: still refused.
	w = perform(t, r, http.MethodDelete, path, adminToken, map[string]interface{}{
		"force":          true,
		"admin_password": "senha-errada",
	})
	requireStatus(t, w, http.StatusForbidden)

	// Force with the right password removes tenant and dependents.
	w = perform(t, r, http.MethodDelete, path, adminToken, map[string]interface{}{
		"force":          true,
		"admin_password": "admin-secret",
	})
	requireStatus(t, w, http.StatusOK)

	var orders, clients, users int64
	db.Model(&models.Order{}).Where("tenant_id = ?", market.ID).Count(&orders)
	db.Model(&models.Client{}).Where("tenant_id = ?", market.ID).Count(&clients)
	db.Model(&models.User{}).Where("tenant_id = ?", market.ID).Count(&users)
	assert.Zero(t, orders)
	assert.Zero(t, clients)
	assert.Zero(t, users)

	requireStatus(t, perform(t, r, http.MethodGet, path, adminToken, nil), http.StatusNotFound)
}

func TestDeleteSupermarketWithoutDependents(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)

	w := perform(t, r, http.MethodPost, "/api/supermarkets/", adminToken, supermarketPayload("semdep01"))
	requireStatus(t, w, http.StatusCreated)
	var created createdMarket
	decodeData(t, w, &created)

	// The tenant user created alongside counts as a dependent, so even
	// a fresh tenant needs force.
	path := fmt.Sprintf("/api/supermarkets/%d", created.Supermarket.ID)
	w = perform(t, r, http.MethodDelete, path, adminToken, map[string]interface{}{
		"force":          true,
		"admin_password": "admin-secret",
	})
	requireStatus(t, w, http.StatusOK)
}

func TestRotateCustomToken(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)
	market, _, oldToken := seedTenant(t, db, "mercado-r")

	path := fmt.Sprintf("/api/supermarkets/%d/custom-token", market.ID)
	w := perform(t, r, http.MethodPut, path, adminToken, nil)
	requireStatus(t, w, http.StatusOK)

	var rotated struct {
		CustomToken string `json:"custom_token"`
	}
	decodeData(t, w, &rotated)
	require.NotEmpty(t, rotated.CustomToken)
	assert.NotEqual(t, oldToken, rotated.CustomToken)

	// The old token stops working, the new one orders normally.
	requireStatus(t, perform(t, r, http.MethodPost, "/api/pedidos/", oldToken, orderPayload()), http.StatusUnauthorized)
	requireStatus(t, perform(t, r, http.MethodPost, "/api/pedidos/", rotated.CustomToken, orderPayload()), http.StatusCreated)
}

func TestIntegrationTokenIssuesLongLivedJWT(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)
	market, _, _ := seedTenant(t, db, "mercado-s")

	path := fmt.Sprintf("/api/supermarkets/%d/integration-token", market.ID)
	w := perform(t, r, http.MethodGet, path, adminToken, nil)
	requireStatus(t, w, http.StatusOK)

	var issued struct {
		AccessToken   string `json:"access_token"`
		TokenType     string `json:"token_type"`
		ExpiresInDays int    `json:"expires_in_days"`
	}
	decodeData(t, w, &issued)
	assert.Equal(t, "bearer", issued.TokenType)
	assert.Equal(t, 180, issued.ExpiresInDays)

	// The issued JWT authenticates as the tenant's panel user.
	requireStatus(t, perform(t, r, http.MethodPost, "/api/pedidos/", issued.AccessToken, orderPayload()), http.StatusCreated)
}

func TestResetPasswordIssuesWorkingCredential(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)
	market, _, _ := seedTenant(t, db, "mercado-t")

	path := fmt.Sprintf("/api/supermarkets/%d/reset-password", market.ID)
	w := perform(t, r, http.MethodPost, path, adminToken, nil)
	requireStatus(t, w, http.StatusOK)

	var reset struct {
		SenhaGerada string `json:"senha_gerada"`
		User        string `json:"user"`
	}
	decodeData(t, w, &reset)
	require.NotEmpty(t, reset.SenhaGerada)

	w = perform(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": reset.User,
		"senha": reset.SenhaGerada,
	})
	requireStatus(t, w, http.StatusOK)

	// The previous password no longer works.
	w = perform(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": reset.User,
		"senha": "market-secret",
	})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestSupermarketHistoryOnCreate(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)

	w := perform(t, r, http.MethodPost, "/api/supermarkets/", adminToken, supermarketPayload("hist01"))
	requireStatus(t, w, http.StatusCreated)
	var created createdMarket
	decodeData(t, w, &created)

	var history []models.SupermarketHistory
	require.NoError(t, db.Where("supermarket_id = ?", created.Supermarket.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, "criacao", history[0].Field)
}

func TestJSONColumnRoundTrip(t *testing.T) {
	r, db := newTestEnv(t)
	_, adminToken := seedAdmin(t, db)

	payload := supermarketPayload("json01")
	payload["metodos_pagamento"] = []string{"pix", "dinheiro", "cartao"}
	payload["horario_funcionamento"] = map[string]string{"seg-sex": "08:00-20:00"}

	w := perform(t, r, http.MethodPost, "/api/supermarkets/", adminToken, payload)
	requireStatus(t, w, http.StatusCreated)
	var created createdMarket
	decodeData(t, w, &created)

	w = perform(t, r, http.MethodGet, fmt.Sprintf("/api/supermarkets/%d", created.Supermarket.ID), adminToken, nil)
	requireStatus(t, w, http.StatusOK)
	var fetched models.Supermarket
	decodeData(t, w, &fetched)

	var methods []string
	require.NoError(t, json.Unmarshal(fetched.PaymentMethods, &methods))
	assert.Equal(t, []string{"pix", "dinheiro", "cartao"}, methods)
}
