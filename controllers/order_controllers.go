package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/services"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

type OrderController struct {
	DB      *gorm.DB
	Service *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db, Service: services.NewOrderService(db)}
}

// orderItemReq accepts the item field aliases agents actually send:
// nome_produto, produto or nome all mean the product name. A subtotal,
// when present, is accepted and ignored (the server recomputes it).
type orderItemReq struct {
	NomeProduto string   `json:"nome_produto"`
	Produto     string   `json:"produto"`
	Nome        string   `json:"nome"`
	Quantidade  int      `json:"quantidade"`
	PrecoUnit   float64  `json:"preco_unitario"`
	Subtotal    *float64 `json:"subtotal"`
}

func (r orderItemReq) productName() string {
	if r.NomeProduto != "" {
		return r.NomeProduto
	}
	if r.Produto != "" {
		return r.Produto
	}
	return r.Nome
}

func toLineItems(reqs []orderItemReq) []services.LineItemInput {
	items := make([]services.LineItemInput, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, services.LineItemInput{
			Product:   r.productName(),
			Quantity:  r.Quantidade,
			UnitPrice: r.PrecoUnit,
		})
	}
	return items
}

type createOrderReq struct {
	NomeCliente string `json:"nome_cliente"`
	Cliente     *struct {
		Nome     string `json:"nome"`
		Telefone string `json:"telefone"`
	} `json:"cliente"`
	Telefone   string         `json:"telefone"`
	Itens      []orderItemReq `json:"itens" binding:"required"`
	Forma      *string        `json:"forma"`
	Endereco   *string        `json:"endereco"`
	Observacao *string        `json:"observacao"`
	CreatedAt  *time.Time     `json:"created_at"`
	Total      *float64       `json:"total"`
}

// CreateOrder reconciles and stores a new order for the caller's
// tenant. Works with a session token or a static tenant token.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	p, tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Alternate payload shape: {"cliente": {"nome": ..., "telefone": ...}}
	if req.NomeCliente == "" && req.Cliente != nil {
		req.NomeCliente = req.Cliente.Nome
	}
	if req.Telefone == "" && req.Cliente != nil {
		req.Telefone = req.Cliente.Telefone
	}

	order, err := oc.Service.Create(tenantID, p.Actor(), services.CreateOrderInput{
		CustomerName:   req.NomeCliente,
		Phone:          req.Telefone,
		DeliveryMethod: req.Forma,
		Address:        req.Endereco,
		Note:           req.Observacao,
		OrderedAt:      req.CreatedAt,
		Total:          req.Total,
		Items:          toLineItems(req.Itens),
	})
	if err != nil {
		utils.Audit("create", "pedido", nil, p.Actor(), nil, gin.H{
			"nome_cliente": req.NomeCliente,
			"telefone":     req.Telefone,
		}, false, err.Error())
		utils.RespondAppError(c, err)
		return
	}

	utils.Audit("create", "pedido", order.ID, p.Actor(), nil, orderSnapshot(order), true, "")
	utils.RespondJSON(c, http.StatusCreated, "Pedido criado", order)
}

// GetAllOrders lists orders in the caller's scope, optionally filtered
// by status. Admin sees every tenant.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	_, scope, ok := requestScope(c)
	if !ok {
		return
	}

	query := oc.DB.Preload("Items").Order("data_pedido desc, id desc")
	if scope != nil {
		query = query.Where("tenant_id = ?", *scope)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de pedidos", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	_, scope, ok := requestScope(c)
	if !ok {
		return
	}
	order, ok := oc.findOrder(c, scope)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Detalhe do pedido", order)
}

type updateOrderReq struct {
	NomeCliente *string         `json:"nome_cliente"`
	Status      *string         `json:"status"`
	Telefone    *string         `json:"telefone"`
	Forma       *string         `json:"forma"`
	Endereco    *string         `json:"endereco"`
	Observacao  *string         `json:"observacao"`
	Total       *float64        `json:"total"`
	Itens       *[]orderItemReq `json:"itens"`
}

func (r *updateOrderReq) toInput() services.UpdateOrderInput {
	in := services.UpdateOrderInput{
		CustomerName:   r.NomeCliente,
		Status:         r.Status,
		Phone:          r.Telefone,
		DeliveryMethod: r.Forma,
		Address:        r.Endereco,
		Note:           r.Observacao,
		Total:          r.Total,
	}
	if r.Itens != nil {
		items := toLineItems(*r.Itens)
		in.Items = &items
	}
	return in
}

// UpdateOrder applies a partial update; invoiced orders refuse it.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	p, scope, ok := requestScope(c)
	if !ok {
		return
	}
	order, ok := oc.findOrder(c, scope)
	if !ok {
		return
	}
	oc.applyUpdate(c, p.Actor(), order, "pedido")
}

// UpdateOrderByPhone resolves the most recent pending order for a
// phone number and updates it. Used by agents that never learn the
// order id.
func (oc *OrderController) UpdateOrderByPhone(c *gin.Context) {
	p, scope, ok := requestScope(c)
	if !ok {
		return
	}

	phone := c.Param("telefone")
	order, err := oc.Service.FindPendingByPhone(scope, phone)
	if err != nil {
		utils.Audit("update", "pedido_por_telefone", nil, p.Actor(), nil,
			gin.H{"telefone": phone}, false, err.Error())
		utils.RespondAppError(c, err)
		return
	}
	oc.applyUpdate(c, p.Actor(), order, "pedido_por_telefone")
}

func (oc *OrderController) applyUpdate(c *gin.Context, actor string, order *models.Order, entity string) {
	var req updateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	before := orderSnapshot(order)
	if err := oc.Service.Update(order, req.toInput()); err != nil {
		utils.Audit("update", entity, order.ID, actor, before, nil, false, err.Error())
		utils.RespondAppError(c, err)
		return
	}

	utils.Audit("update", entity, order.ID, actor, before, orderSnapshot(order), true, "")
	utils.RespondJSON(c, http.StatusOK, "Pedido atualizado", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	p, scope, ok := requestScope(c)
	if !ok {
		return
	}
	order, ok := oc.findOrder(c, scope)
	if !ok {
		return
	}

	before := orderSnapshot(order)
	if err := oc.Service.Delete(order); err != nil {
		utils.Audit("delete", "pedido", order.ID, p.Actor(), before, nil, false, err.Error())
		utils.RespondAppError(c, err)
		return
	}

	utils.Audit("delete", "pedido", order.ID, p.Actor(), before, nil, true, "")
	utils.RespondJSON(c, http.StatusOK, "Pedido excluído", gin.H{"id": order.ID})
}

// ExportOrders streams the tenant's orders as an XLSX workbook.
func (oc *OrderController) ExportOrders(c *gin.Context) {
	_, scope, ok := requestScope(c)
	if !ok {
		return
	}

	query := oc.DB.Preload("Items").Order("data_pedido desc, id desc")
	if scope != nil {
		query = query.Where("tenant_id = ?", *scope)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	book, err := services.BuildOrdersWorkbook(orders)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("pedidos_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", book)
}

func (oc *OrderController) findOrder(c *gin.Context, scope *uint) (*models.Order, bool) {
	id, err := strconv.Atoi(c.Param("pedido_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("id de pedido inválido"))
		return nil, false
	}

	query := oc.DB.Preload("Items")
	if scope != nil {
		query = query.Where("tenant_id = ?", *scope)
	}

	var order models.Order
	if err := query.First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("pedido %d não encontrado", id))
		return nil, false
	}
	return &order, true
}

func orderSnapshot(order *models.Order) gin.H {
	return gin.H{
		"nome_cliente":  order.CustomerName,
		"telefone":      order.Phone,
		"status":        order.Status,
		"valor_total":   order.Total,
		"numero_pedido": order.Number,
		"itens":         len(order.Items),
	}
}
