package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queiroz-sistemas/supermercado-api/controllers"
	"github.com/queiroz-sistemas/supermercado-api/middlewares"
	"github.com/queiroz-sistemas/supermercado-api/models"
)

// SetupRouter wires every route group. Order endpoints accept both
// session tokens and static tenant tokens; the management surfaces are
// role-gated on top of that.
func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	r.Static("/uploads", "./uploads")

	authCtrl := controllers.NewAuthController(db)
	orderCtrl := controllers.NewOrderController(db)
	clientCtrl := controllers.NewClientController(db)
	marketCtrl := controllers.NewSupermarketController(db)
	financeCtrl := controllers.NewFinanceController(db)

	registerAuthRoutes := func(g *gin.RouterGroup) {
		g.POST("/register", authCtrl.Register)
		g.POST("/login", middlewares.LoginRateLimiter(), authCtrl.Login)
	}

	api := r.Group("/api")

	registerAuthRoutes(api.Group("/auth"))
	// Legacy alias kept for agents configured before the /api prefix.
	registerAuthRoutes(r.Group("/auth"))

	orders := api.Group("/pedidos")
	orders.Use(middlewares.AuthMiddleware(db))
	{
		orders.POST("/", orderCtrl.CreateOrder)
		orders.GET("/", orderCtrl.GetAllOrders)
		orders.GET("/export", orderCtrl.ExportOrders)
		orders.GET("/:pedido_id", orderCtrl.GetOrderByID)
		orders.PUT("/:pedido_id", orderCtrl.UpdateOrder)
		orders.PUT("/telefone/:telefone", orderCtrl.UpdateOrderByPhone)
		orders.DELETE("/:pedido_id", orderCtrl.DeleteOrder)
	}

	clients := api.Group("/clientes")
	clients.Use(middlewares.AuthMiddleware(db), middlewares.RequireRole(models.RoleSupermarket))
	{
		clients.POST("/", clientCtrl.CreateClient)
		clients.GET("/", clientCtrl.GetAllClients)
		clients.GET("/:cliente_id", clientCtrl.GetClientByID)
		clients.PUT("/:cliente_id", clientCtrl.UpdateClient)
		clients.DELETE("/:cliente_id", clientCtrl.DeleteClient)
	}

	markets := api.Group("/supermarkets")
	{
		// Address lookup feeds the public signup form, no auth.
		markets.GET("/cep/:cep", marketCtrl.LookupCEP)

		admin := markets.Group("")
		admin.Use(middlewares.AuthMiddleware(db), middlewares.RequireRole(models.RoleAdmin))
		{
			admin.POST("/", marketCtrl.CreateSupermarket)
			admin.GET("/", marketCtrl.ListSupermarkets)
			admin.GET("/:supermarket_id", marketCtrl.GetSupermarket)
			admin.PUT("/:supermarket_id", marketCtrl.UpdateSupermarket)
			admin.DELETE("/:supermarket_id", marketCtrl.DeleteSupermarket)
			admin.GET("/:supermarket_id/history", marketCtrl.GetHistory)
			admin.GET("/:supermarket_id/integration-token", marketCtrl.GetIntegrationToken)
			admin.POST("/:supermarket_id/reset-password", marketCtrl.ResetPassword)
			admin.PUT("/:supermarket_id/custom-token", marketCtrl.RotateCustomToken)
			admin.POST("/:supermarket_id/upload-logo", marketCtrl.UploadLogo)
			admin.POST("/:supermarket_id/agent-test", marketCtrl.TestAgentWebhook)
		}
	}

	finance := api.Group("/admin/financeiro")
	finance.Use(middlewares.AuthMiddleware(db), middlewares.RequireRole(models.RoleAdmin))
	{
		finance.GET("/:tenant_id", financeCtrl.GetTenantFinance)
		finance.POST("/:tenant_id/fatura", financeCtrl.CreateInvoice)
		finance.PUT("/:tenant_id/fatura/:fatura_id/pagar", financeCtrl.MarkInvoicePaid)
	}

	return r
}
