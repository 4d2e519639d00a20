package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// ClientController is the tenant-facing client CRUD. Routes are
// restricted to supermarket-role users by the router.
type ClientController struct {
	DB *gorm.DB
}

func NewClientController(db *gorm.DB) *ClientController {
	return &ClientController{DB: db}
}

type clientReq struct {
	Name         string  `json:"nome" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	Phone        string  `json:"telefone" binding:"required"`
	CPF          *string `json:"cpf"`
	Address      *string `json:"endereco"`
	Number       *string `json:"numero"`
	Complement   *string `json:"complemento"`
	Neighborhood *string `json:"bairro"`
	City         *string `json:"cidade"`
	State        *string `json:"estado"`
	CEP          *string `json:"cep"`
}

func (cc *ClientController) CreateClient(c *gin.Context) {
	_, tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var req clientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing models.Client
	err := cc.DB.Where("email = ? AND tenant_id = ?", req.Email, tenantID).First(&existing).Error
	if err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("cliente com este email já existe"))
		return
	}

	client := models.Client{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		CPF:          req.CPF,
		Address:      req.Address,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		CEP:          req.CEP,
		Active:       true,
		TenantID:     tenantID,
	}
	if err := cc.DB.Create(&client).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Cliente criado", client)
}

func (cc *ClientController) GetAllClients(c *gin.Context) {
	_, tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	var clients []models.Client
	err := cc.DB.Where("tenant_id = ?", tenantID).
		Order("id asc").
		Offset(skip).
		Limit(limit).
		Find(&clients).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	for i := range clients {
		cc.DB.Model(&models.Order{}).
			Where("cliente_id = ?", clients[i].ID).
			Count(&clients[i].TotalOrders)
	}

	utils.RespondJSON(c, http.StatusOK, "Lista de clientes", clients)
}

func (cc *ClientController) GetClientByID(c *gin.Context) {
	_, tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	client, ok := cc.findClient(c, tenantID)
	if !ok {
		return
	}

	cc.DB.Model(&models.Order{}).
		Where("cliente_id = ?", client.ID).
		Count(&client.TotalOrders)

	utils.RespondJSON(c, http.StatusOK, "Detalhe do cliente", client)
}

func (cc *ClientController) UpdateClient(c *gin.Context) {
	_, tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	client, ok := cc.findClient(c, tenantID)
	if !ok {
		return
	}

	// Partial update: only fields present in the payload are applied.
	var req struct {
		Name         *string `json:"nome"`
		Email        *string `json:"email"`
		Phone        *string `json:"telefone"`
		CPF          *string `json:"cpf"`
		Address      *string `json:"endereco"`
		Number       *string `json:"numero"`
		Complement   *string `json:"complemento"`
		Neighborhood *string `json:"bairro"`
		City         *string `json:"cidade"`
		State        *string `json:"estado"`
		CEP          *string `json:"cep"`
		Active       *bool   `json:"ativo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.CPF != nil {
		client.CPF = req.CPF
	}
	if req.Address != nil {
		client.Address = req.Address
	}
	if req.Number != nil {
		client.Number = req.Number
	}
	if req.Complement != nil {
		client.Complement = req.Complement
	}
	if req.Neighborhood != nil {
		client.Neighborhood = req.Neighborhood
	}
	if req.City != nil {
		client.City = req.City
	}
	if req.State != nil {
		client.State = req.State
	}
	if req.CEP != nil {
		client.CEP = req.CEP
	}
	if req.Active != nil {
		client.Active = *req.Active
	}

	if err := cc.DB.Save(client).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cliente atualizado", client)
}

func (cc *ClientController) DeleteClient(c *gin.Context) {
	_, tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	client, ok := cc.findClient(c, tenantID)
	if !ok {
		return
	}

	if err := cc.DB.Delete(client).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cliente excluído", gin.H{"id": client.ID})
}

func (cc *ClientController) findClient(c *gin.Context, tenantID uint) (*models.Client, bool) {
	id, err := strconv.Atoi(c.Param("cliente_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("id de cliente inválido"))
		return nil, false
	}

	var client models.Client
	err = cc.DB.Where("tenant_id = ?", tenantID).First(&client, id).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("cliente %d não encontrado", id))
		return nil, false
	}
	return &client, true
}
