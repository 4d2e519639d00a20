package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/queiroz-sistemas/supermercado-api/middlewares"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// requestScope returns the authenticated principal and its tenant
// filter (nil means admin: no filter). A false return means the
// response has already been written.
func requestScope(c *gin.Context) (middlewares.Principal, *uint, bool) {
	p, ok := middlewares.GetPrincipal(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("não autenticado"))
		return nil, nil, false
	}
	return p, p.TenantID(), true
}

// requireTenant is requestScope for routes that need one concrete
// tenant to act on. A supermarket user without a tenant, or an admin
// token (which is scoped to every tenant at once), cannot own an order.
func requireTenant(c *gin.Context) (middlewares.Principal, uint, bool) {
	p, scope, ok := requestScope(c)
	if !ok {
		return nil, 0, false
	}
	if scope == nil {
		utils.RespondError(c, http.StatusForbidden, errors.New("usuário não possui tenant associado"))
		return nil, 0, false
	}
	return p, *scope, true
}
