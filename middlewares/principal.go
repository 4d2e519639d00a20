package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/queiroz-sistemas/supermercado-api/models"
)

const principalKey = "principal"

// Principal is the resolved identity behind a request. There are
// exactly two kinds: a logged-in user session, or a supermarket's
// long-lived static API token. Consumers type-switch on the concrete
// variant when the distinction matters.
type Principal interface {
	// TenantID is the tenant scope of the principal; nil means no
	// filter (admin sees every tenant).
	TenantID() *uint
	// Actor identifies who performed an operation in audit entries.
	Actor() string

	sealed()
}

// SessionPrincipal is a user authenticated through a JWT session token.
type SessionPrincipal struct {
	User models.User
}

func (p SessionPrincipal) TenantID() *uint {
	if p.User.Role == models.RoleAdmin {
		return nil
	}
	return p.User.TenantID
}

func (p SessionPrincipal) Actor() string { return p.User.Email }
func (SessionPrincipal) sealed()         {}

// StaticTokenPrincipal is an ordering agent authenticated by the
// tenant's static token. It is always scoped to that one tenant.
type StaticTokenPrincipal struct {
	Supermarket models.Supermarket
}

func (p StaticTokenPrincipal) TenantID() *uint {
	id := p.Supermarket.ID
	return &id
}

func (p StaticTokenPrincipal) Actor() string {
	return "custom_token_" + p.Supermarket.Email
}
func (StaticTokenPrincipal) sealed() {}

func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

func GetPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(Principal)
	return p, ok
}
