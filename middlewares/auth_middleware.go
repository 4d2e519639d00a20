package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// AuthMiddleware resolves the bearer credential into a Principal. Two
// credential kinds are accepted: a signed session token, or a tenant's
// static API token matched verbatim against an active supermarket.
// The second path exists because external ordering agents cannot log
// in interactively; they hold a long-lived secret instead.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if claims, err := utils.ParseToken(tokenString); err == nil && claims.UserID != 0 {
			var user models.User
			if err := db.First(&user, claims.UserID).Error; err != nil {
				utils.RespondError(c, http.StatusUnauthorized, errors.New("usuário do token não encontrado"))
				c.Abort()
				return
			}
			SetPrincipal(c, SessionPrincipal{User: user})
			c.Next()
			return
		}

		var market models.Supermarket
		err := db.Where("custom_token = ? AND ativo = ?", tokenString, true).First(&market).Error
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token inválido ou expirado"))
			c.Abort()
			return
		}
		SetPrincipal(c, StaticTokenPrincipal{Supermarket: market})
		c.Next()
	}
}

// RequireRole restricts a route to session users holding one of the
// given roles. Static-token principals never pass: agents may only use
// the order endpoints.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("não autenticado"))
			c.Abort()
			return
		}

		switch pr := p.(type) {
		case SessionPrincipal:
			for _, role := range roles {
				if pr.User.Role == role {
					c.Next()
					return
				}
			}
		case StaticTokenPrincipal:
			// fall through to forbidden
		}

		utils.RespondError(c, http.StatusForbidden, errors.New("acesso negado para este perfil"))
		c.Abort()
	}
}
