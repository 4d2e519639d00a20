package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/queiroz-sistemas/supermercado-api/middlewares"
	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/services"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// SupermarketController is the admin-only tenant management surface:
// CRUD, change history, credentials and integration plumbing.
type SupermarketController struct {
	DB    *gorm.DB
	CEP   *services.CEPClient
	Agent *services.AgentClient
}

func NewSupermarketController(db *gorm.DB) *SupermarketController {
	return &SupermarketController{
		DB:    db,
		CEP:   services.NewCEPClient(),
		Agent: services.NewAgentClient(),
	}
}

type supermarketReq struct {
	Name              string             `json:"nome" binding:"required"`
	CNPJ              *string            `json:"cnpj"`
	Email             string             `json:"email" binding:"required,email"`
	Phone             string             `json:"telefone" binding:"required"`
	CEP               string             `json:"cep" binding:"required"`
	Address           string             `json:"endereco" binding:"required"`
	Number            string             `json:"numero" binding:"required"`
	Complement        *string            `json:"complemento"`
	Neighborhood      string             `json:"bairro" binding:"required"`
	City              string             `json:"cidade" binding:"required"`
	State             string             `json:"estado" binding:"required,len=2"`
	OpeningHours      models.JSONColumn  `json:"horario_funcionamento"`
	PaymentMethods    models.JSONColumn  `json:"metodos_pagamento"`
	ProductCategories models.JSONColumn  `json:"categorias_produtos"`
	StorageCapacity   *int               `json:"capacidade_estocagem"`
	ContactPerson     *string            `json:"responsavel"`
	MonthlyValue      *float64           `json:"valor_mensal"`
	BillingDueDay     *int               `json:"dia_vencimento"`
	Plan              string             `json:"plano"`
}

// CreateSupermarket registers a tenant and its panel user in one
// transaction. The generated password is returned exactly once, for the
// admin to hand over.
func (sc *SupermarketController) CreateSupermarket(c *gin.Context) {
	p, _, ok := requestScope(c)
	if !ok {
		return
	}

	var req supermarketReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Plan == "" {
		req.Plan = "basico"
	}

	var existing models.Supermarket
	if err := sc.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("email já cadastrado"))
		return
	}
	if req.CNPJ != nil && *req.CNPJ != "" {
		if err := sc.DB.Where("cnpj = ?", *req.CNPJ).First(&existing).Error; err == nil {
			utils.RespondError(c, http.StatusConflict, errors.New("CNPJ já cadastrado"))
			return
		}
	}

	market := models.Supermarket{
		Name:              req.Name,
		CNPJ:              req.CNPJ,
		Email:             req.Email,
		Phone:             req.Phone,
		CEP:               req.CEP,
		Address:           req.Address,
		Number:            req.Number,
		Complement:        req.Complement,
		Neighborhood:      req.Neighborhood,
		City:              req.City,
		State:             req.State,
		OpeningHours:      req.OpeningHours,
		PaymentMethods:    req.PaymentMethods,
		ProductCategories: req.ProductCategories,
		StorageCapacity:   req.StorageCapacity,
		ContactPerson:     req.ContactPerson,
		MonthlyValue:      req.MonthlyValue,
		BillingDueDay:     req.BillingDueDay,
		Plan:              req.Plan,
		Active:            true,
	}

	password := utils.GenerateRandomPassword(12)
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&market).Error; err != nil {
			return err
		}
		user := models.User{
			Name:         market.Name,
			Email:        market.Email,
			PasswordHash: string(hashed),
			Role:         models.RoleSupermarket,
			TenantID:     &market.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return sc.logChange(tx, market.ID, "criacao", nil, strPtr("Supermercado criado"), p.Actor())
	})
	if err != nil {
		utils.Audit("create", "supermarket", nil, p.Actor(), nil,
			gin.H{"nome": req.Name, "email": req.Email}, false, err.Error())
		utils.RespondError(c, http.StatusInternalServerError, errors.New("erro ao criar supermercado"))
		return
	}

	utils.Audit("create", "supermarket", market.ID, p.Actor(), nil,
		gin.H{"nome": market.Name, "email": market.Email, "cnpj": market.CNPJ}, true, "")

	utils.RespondJSON(c, http.StatusCreated, "Supermercado criado", gin.H{
		"supermarket":  market,
		"senha_gerada": password,
	})
}

func (sc *SupermarketController) ListSupermarkets(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	query := sc.DB.Model(&models.Supermarket{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("nome LIKE ? OR email LIKE ? OR cnpj LIKE ?", like, like, like)
	}
	if ativo := c.Query("ativo"); ativo != "" {
		active, err := strconv.ParseBool(ativo)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("parâmetro ativo inválido"))
			return
		}
		query = query.Where("ativo = ?", active)
	}

	var markets []models.Supermarket
	if err := query.Order("id asc").Offset(skip).Limit(limit).Find(&markets).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de supermercados", markets)
}

func (sc *SupermarketController) GetSupermarket(c *gin.Context) {
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Detalhe do supermercado", market)
}

// UpdateSupermarket applies a partial update, recording one history row
// per changed field.
func (sc *SupermarketController) UpdateSupermarket(c *gin.Context) {
	p, _, ok := requestScope(c)
	if !ok {
		return
	}
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}

	var req struct {
		Name              *string            `json:"nome"`
		CNPJ              *string            `json:"cnpj"`
		Email             *string            `json:"email"`
		Phone             *string            `json:"telefone"`
		CEP               *string            `json:"cep"`
		Address           *string            `json:"endereco"`
		Number            *string            `json:"numero"`
		Complement        *string            `json:"complemento"`
		Neighborhood      *string            `json:"bairro"`
		City              *string            `json:"cidade"`
		State             *string            `json:"estado"`
		OpeningHours      *models.JSONColumn `json:"horario_funcionamento"`
		PaymentMethods    *models.JSONColumn `json:"metodos_pagamento"`
		ProductCategories *models.JSONColumn `json:"categorias_produtos"`
		StorageCapacity   *int               `json:"capacidade_estocagem"`
		ContactPerson     *string            `json:"responsavel"`
		MonthlyValue      *float64           `json:"valor_mensal"`
		BillingDueDay     *int               `json:"dia_vencimento"`
		Plan              *string            `json:"plano"`
		Active            *bool              `json:"ativo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Email != nil && *req.Email != market.Email {
		var other models.Supermarket
		err := sc.DB.Where("email = ? AND id != ?", *req.Email, market.ID).First(&other).Error
		if err == nil {
			utils.RespondError(c, http.StatusConflict, errors.New("email já cadastrado"))
			return
		}
	}
	if req.CNPJ != nil && (market.CNPJ == nil || *req.CNPJ != *market.CNPJ) {
		var other models.Supermarket
		err := sc.DB.Where("cnpj = ? AND id != ?", *req.CNPJ, market.ID).First(&other).Error
		if err == nil {
			utils.RespondError(c, http.StatusConflict, errors.New("CNPJ já cadastrado"))
			return
		}
	}

	before := gin.H{"nome": market.Name, "email": market.Email, "cnpj": market.CNPJ}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		track := func(field string, oldV, newV *string) error {
			return sc.logChange(tx, market.ID, field, oldV, newV, p.Actor())
		}

		if req.Name != nil && *req.Name != market.Name {
			if err := track("nome", strPtr(market.Name), req.Name); err != nil {
				return err
			}
			market.Name = *req.Name
		}
		if req.CNPJ != nil && (market.CNPJ == nil || *market.CNPJ != *req.CNPJ) {
			if err := track("cnpj", market.CNPJ, req.CNPJ); err != nil {
				return err
			}
			market.CNPJ = req.CNPJ
		}
		if req.Email != nil && *req.Email != market.Email {
			if err := track("email", strPtr(market.Email), req.Email); err != nil {
				return err
			}
			market.Email = *req.Email
		}
		if req.Phone != nil && *req.Phone != market.Phone {
			if err := track("telefone", strPtr(market.Phone), req.Phone); err != nil {
				return err
			}
			market.Phone = *req.Phone
		}
		if req.CEP != nil && *req.CEP != market.CEP {
			if err := track("cep", strPtr(market.CEP), req.CEP); err != nil {
				return err
			}
			market.CEP = *req.CEP
		}
		if req.Address != nil && *req.Address != market.Address {
			if err := track("endereco", strPtr(market.Address), req.Address); err != nil {
				return err
			}
			market.Address = *req.Address
		}
		if req.Number != nil && *req.Number != market.Number {
			if err := track("numero", strPtr(market.Number), req.Number); err != nil {
				return err
			}
			market.Number = *req.Number
		}
		if req.Complement != nil {
			market.Complement = req.Complement
		}
		if req.Neighborhood != nil && *req.Neighborhood != market.Neighborhood {
			if err := track("bairro", strPtr(market.Neighborhood), req.Neighborhood); err != nil {
				return err
			}
			market.Neighborhood = *req.Neighborhood
		}
		if req.City != nil && *req.City != market.City {
			if err := track("cidade", strPtr(market.City), req.City); err != nil {
				return err
			}
			market.City = *req.City
		}
		if req.State != nil && *req.State != market.State {
			if err := track("estado", strPtr(market.State), req.State); err != nil {
				return err
			}
			market.State = *req.State
		}
		if req.OpeningHours != nil {
			market.OpeningHours = *req.OpeningHours
		}
		if req.PaymentMethods != nil {
			market.PaymentMethods = *req.PaymentMethods
		}
		if req.ProductCategories != nil {
			market.ProductCategories = *req.ProductCategories
		}
		if req.StorageCapacity != nil {
			market.StorageCapacity = req.StorageCapacity
		}
		if req.ContactPerson != nil {
			market.ContactPerson = req.ContactPerson
		}
		if req.MonthlyValue != nil {
			if err := track("valor_mensal", floatPtrStr(market.MonthlyValue), floatPtrStr(req.MonthlyValue)); err != nil {
				return err
			}
			market.MonthlyValue = req.MonthlyValue
		}
		if req.BillingDueDay != nil {
			if *req.BillingDueDay < 1 || *req.BillingDueDay > 31 {
				return utils.NewError(utils.KindValidation, "dia_vencimento deve estar entre 1 e 31")
			}
			market.BillingDueDay = req.BillingDueDay
		}
		if req.Plan != nil && *req.Plan != market.Plan {
			if err := track("plano", strPtr(market.Plan), req.Plan); err != nil {
				return err
			}
			market.Plan = *req.Plan
		}
		if req.Active != nil && *req.Active != market.Active {
			if err := track("ativo", strPtr(strconv.FormatBool(market.Active)), strPtr(strconv.FormatBool(*req.Active))); err != nil {
				return err
			}
			market.Active = *req.Active
		}

		return tx.Save(market).Error
	})
	if err != nil {
		utils.Audit("update", "supermarket", market.ID, p.Actor(), before, nil, false, err.Error())
		utils.RespondAppError(c, err)
		return
	}

	utils.Audit("update", "supermarket", market.ID, p.Actor(), before,
		gin.H{"nome": market.Name, "email": market.Email, "cnpj": market.CNPJ}, true, "")
	utils.RespondJSON(c, http.StatusOK, "Supermercado atualizado", market)
}

// DeleteSupermarket removes a tenant. With dependents (users, orders,
// clients) it refuses unless force is set and the admin re-enters their
// password; then dependents go first, orders before clients before
// users, and the tenant row last.
func (sc *SupermarketController) DeleteSupermarket(c *gin.Context) {
	p, _, ok := requestScope(c)
	if !ok {
		return
	}
	session, ok := p.(middlewares.SessionPrincipal)
	if !ok {
		utils.RespondError(c, http.StatusForbidden, errors.New("exclusão exige sessão de administrador"))
		return
	}
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}

	var req struct {
		Force         bool   `json:"force"`
		AdminPassword string `json:"admin_password"`
	}
	// Body is optional for the simple (no dependents) case.
	_ = c.ShouldBindJSON(&req)

	before := gin.H{"nome": market.Name, "email": market.Email, "cnpj": market.CNPJ}

	var usersCount, ordersCount, clientsCount int64
	sc.DB.Model(&models.User{}).Where("tenant_id = ?", market.ID).Count(&usersCount)
	sc.DB.Model(&models.Order{}).Where("tenant_id = ?", market.ID).Count(&ordersCount)
	sc.DB.Model(&models.Client{}).Where("tenant_id = ?", market.ID).Count(&clientsCount)
	hasDependents := usersCount > 0 || ordersCount > 0 || clientsCount > 0

	if hasDependents {
		if !req.Force {
			details := make([]string, 0, 3)
			if usersCount > 0 {
				details = append(details, fmt.Sprintf("%d usuário(s)", usersCount))
			}
			if ordersCount > 0 {
				details = append(details, fmt.Sprintf("%d pedido(s)", ordersCount))
			}
			if clientsCount > 0 {
				details = append(details, fmt.Sprintf("%d cliente(s)", clientsCount))
			}
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf(
				"não é possível excluir o supermercado: existem registros relacionados (%s); use exclusão forçada com a senha do administrador",
				strings.Join(details, ", ")))
			return
		}
		if req.AdminPassword == "" ||
			bcrypt.CompareHashAndPassword([]byte(session.User.PasswordHash), []byte(req.AdminPassword)) != nil {
			utils.RespondError(c, http.StatusForbidden, errors.New("senha do administrador inválida"))
			return
		}
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if hasDependents {
			var orderIDs []uint
			if err := tx.Model(&models.Order{}).Where("tenant_id = ?", market.ID).Pluck("id", &orderIDs).Error; err != nil {
				return err
			}
			if len(orderIDs) > 0 {
				if err := tx.Where("pedido_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("tenant_id = ?", market.ID).Delete(&models.Order{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tenant_id = ?", market.ID).Delete(&models.Client{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tenant_id = ?", market.ID).Delete(&models.User{}).Error; err != nil {
				return err
			}
			if err := sc.logChange(tx, market.ID, "exclusao_forcada",
				strPtr("Com dependências"), strPtr("Dependências removidas"), p.Actor()); err != nil {
				return err
			}
		} else {
			if err := sc.logChange(tx, market.ID, "exclusao",
				strPtr("Ativo"), strPtr("Excluído"), p.Actor()); err != nil {
				return err
			}
		}
		return tx.Delete(market).Error
	})
	if err != nil {
		utils.Audit("delete", "supermarket", market.ID, p.Actor(), before, nil, false, err.Error())
		utils.RespondError(c, http.StatusInternalServerError, errors.New("erro ao excluir supermercado"))
		return
	}

	msg := "Supermercado excluído com sucesso"
	if hasDependents {
		msg = "Supermercado excluído com sucesso (forçada)"
	}
	utils.Audit("delete", "supermarket", market.ID, p.Actor(), before, nil, true, msg)
	utils.RespondJSON(c, http.StatusOK, msg, gin.H{"id": market.ID})
}

func (sc *SupermarketController) GetHistory(c *gin.Context) {
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}

	var history []models.SupermarketHistory
	err := sc.DB.Where("supermarket_id = ?", market.ID).
		Order("data_alteracao desc, id desc").
		Find(&history).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Histórico de alterações", history)
}

// GetIntegrationToken issues a long-lived (180d) session token for the
// tenant's panel user, for agents that prefer JWT over the static
// token.
func (sc *SupermarketController) GetIntegrationToken(c *gin.Context) {
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}

	user, err := sc.tenantUser(market)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	token, err := utils.GenerateTokenWithExpiry(user.ID, user.Role, 180*24*time.Hour)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Token de integração gerado", gin.H{
		"access_token":    token,
		"token_type":      "bearer",
		"expires_in_days": 180,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"role":      user.Role,
			"tenant_id": user.TenantID,
		},
	})
}

// ResetPassword regenerates the tenant panel user's password and hands
// the new one back to the admin, once.
func (sc *SupermarketController) ResetPassword(c *gin.Context) {
	p, _, ok := requestScope(c)
	if !ok {
		return
	}
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}

	user, err := sc.tenantUser(market)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	password := utils.GenerateRandomPassword(12)
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("senha_hash", string(hashed)).Error; err != nil {
			return err
		}
		return sc.logChange(tx, market.ID, "reset_password", strPtr("-"), strPtr("Senha redefinida"), p.Actor())
	})
	if err != nil {
		utils.Audit("update", "supermarket_password", market.ID, p.Actor(), nil, nil, false, err.Error())
		utils.RespondError(c, http.StatusInternalServerError, errors.New("erro ao redefinir senha"))
		return
	}

	utils.Audit("update", "supermarket_password", market.ID, p.Actor(), nil,
		gin.H{"user": user.Email}, true, "")
	utils.RespondJSON(c, http.StatusOK, "Senha redefinida", gin.H{
		"senha_gerada": password,
		"user":         user.Email,
	})
}

// RotateCustomToken sets or regenerates the tenant's static API token.
// With no token in the body a fresh random one is generated.
func (sc *SupermarketController) RotateCustomToken(c *gin.Context) {
	p, _, ok := requestScope(c)
	if !ok {
		return
	}
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}

	var req struct {
		CustomToken string `json:"custom_token"`
	}
	_ = c.ShouldBindJSON(&req)
	newToken := req.CustomToken
	if newToken == "" {
		newToken = uuid.NewString()
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := sc.logChange(tx, market.ID, "custom_token", market.CustomToken, strPtr(newToken), p.Actor()); err != nil {
			return err
		}
		market.CustomToken = &newToken
		return tx.Save(market).Error
	})
	if err != nil {
		utils.Audit("update", "supermarket_token", market.ID, p.Actor(), nil, nil, false, err.Error())
		utils.RespondError(c, http.StatusInternalServerError, errors.New("erro ao atualizar token"))
		return
	}

	utils.Audit("update", "supermarket_token", market.ID, p.Actor(), nil, nil, true, "")
	utils.RespondJSON(c, http.StatusOK, "Token atualizado", gin.H{"custom_token": newToken})
}

// UploadLogo stores the tenant's logo under uploads/logos and records
// the change.
func (sc *SupermarketController) UploadLogo(c *gin.Context) {
	p, _, ok := requestScope(c)
	if !ok {
		return
	}
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("arquivo é obrigatório"))
		return
	}
	if file.Size > 5*1024*1024 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("arquivo muito grande (máximo 5MB)"))
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.RespondError(c, http.StatusBadRequest, errors.New("arquivo deve ser uma imagem"))
		return
	}

	uploadDir := filepath.Join("uploads", "logos")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	filename := fmt.Sprintf("supermarket_%d_%s%s", market.ID, time.Now().Format("20060102_150405"), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, filename)); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	logoURL := "/uploads/logos/" + filename
	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := sc.logChange(tx, market.ID, "logo_url", market.LogoURL, strPtr(logoURL), p.Actor()); err != nil {
			return err
		}
		market.LogoURL = &logoURL
		return tx.Save(market).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Logo enviado com sucesso", gin.H{"logo_url": logoURL})
}

// TestAgentWebhook relays a test payload to the tenant's ordering-agent
// webhook, server-to-server.
func (sc *SupermarketController) TestAgentWebhook(c *gin.Context) {
	market, ok := sc.findSupermarket(c)
	if !ok {
		return
	}

	var req struct {
		URL     string                 `json:"url" binding:"required"`
		Payload map[string]interface{} `json:"payload"`
		Headers map[string]string      `json:"headers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var payload interface{}
	if req.Payload != nil {
		payload = req.Payload
	}
	result, err := sc.Agent.TestWebhook(market, req.URL, payload, req.Headers)
	if err != nil {
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Webhook testado", result)
}

// LookupCEP proxies the ViaCEP address lookup for the admin form.
func (sc *SupermarketController) LookupCEP(c *gin.Context) {
	info, err := sc.CEP.Lookup(c.Param("cep"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "CEP encontrado", info)
}

func (sc *SupermarketController) findSupermarket(c *gin.Context) (*models.Supermarket, bool) {
	id, err := strconv.Atoi(c.Param("supermarket_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id de supermercado inválido"))
		return nil, false
	}

	var market models.Supermarket
	if err := sc.DB.First(&market, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("supermercado %d não encontrado", id))
		return nil, false
	}
	return &market, true
}

// tenantUser finds the panel user of a tenant, preferring the one that
// shares the supermarket's email, then any supermarket-role user, then
// any user at all.
func (sc *SupermarketController) tenantUser(market *models.Supermarket) (*models.User, error) {
	var user models.User
	err := sc.DB.Where("tenant_id = ? AND email = ?", market.ID, market.Email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	err = sc.DB.Where("tenant_id = ? AND role = ?", market.ID, models.RoleSupermarket).First(&user).Error
	if err == nil {
		return &user, nil
	}
	err = sc.DB.Where("tenant_id = ?", market.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	return nil, utils.NewError(utils.KindNotFound, "usuário do supermercado não encontrado")
}

func (sc *SupermarketController) logChange(tx *gorm.DB, marketID uint, field string, oldV, newV *string, actor string) error {
	return tx.Create(&models.SupermarketHistory{
		SupermarketID: marketID,
		Field:         field,
		OldValue:      oldV,
		NewValue:      newV,
		ChangedBy:     actor,
	}).Error
}

func strPtr(s string) *string { return &s }

func floatPtrStr(f *float64) *string {
	if f == nil {
		return nil
	}
	s := strconv.FormatFloat(*f, 'f', 2, 64)
	return &s
}
