package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// FinanceController exposes the admin billing view: the invoices of a
// tenant plus the tenant's plan data.
type FinanceController struct {
	DB *gorm.DB
}

func NewFinanceController(db *gorm.DB) *FinanceController {
	return &FinanceController{DB: db}
}

// planPrice is the fallback monthly value when the tenant has no
// negotiated valor_mensal.
func planPrice(plan string) float64 {
	switch plan {
	case "premium":
		return 199.90
	case "enterprise":
		return 399.90
	default:
		return 99.90
	}
}

func (fc *FinanceController) monthlyValue(market *models.Supermarket) float64 {
	if market.MonthlyValue != nil && *market.MonthlyValue > 0 {
		return *market.MonthlyValue
	}
	return planPrice(market.Plan)
}

// GetTenantFinance returns the tenant's invoices, newest first, with
// the billing profile attached.
func (fc *FinanceController) GetTenantFinance(c *gin.Context) {
	market, ok := fc.findTenant(c)
	if !ok {
		return
	}

	var invoices []models.Invoice
	err := fc.DB.Where("tenant_id = ?", market.ID).
		Order("mes_referencia desc, id desc").
		Find(&invoices).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Financeiro do supermercado", gin.H{
		"cliente": gin.H{
			"id":             market.ID,
			"nome":           market.Name,
			"email":          market.Email,
			"plano":          market.Plan,
			"valor_mensal":   fc.monthlyValue(market),
			"dia_vencimento": market.BillingDueDay,
		},
		"faturas": invoices,
	})
}

// CreateInvoice issues one invoice for the tenant's current plan value.
// mes_referencia defaults to the current month; the due date lands on
// the tenant's billing day when one is set.
func (fc *FinanceController) CreateInvoice(c *gin.Context) {
	p, _, ok := requestScope(c)
	if !ok {
		return
	}
	market, ok := fc.findTenant(c)
	if !ok {
		return
	}

	var req struct {
		ReferenceMonth string   `json:"mes_referencia"`
		Value          *float64 `json:"valor"`
		DueDate        *string  `json:"data_vencimento"`
	}
	_ = c.ShouldBindJSON(&req)

	now := time.Now()
	refMonth := req.ReferenceMonth
	if refMonth == "" {
		refMonth = now.Format("2006-01")
	}
	ref, err := time.Parse("2006-01", refMonth)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("mes_referencia inválido (use AAAA-MM)"))
		return
	}

	var existing models.Invoice
	err = fc.DB.Where("tenant_id = ? AND mes_referencia = ?", market.ID, refMonth).First(&existing).Error
	if err == nil {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("fatura de %s já emitida para este supermercado", refMonth))
		return
	}

	value := fc.monthlyValue(market)
	if req.Value != nil && *req.Value > 0 {
		value = *req.Value
	}

	dueDay := 10
	if market.BillingDueDay != nil {
		dueDay = *market.BillingDueDay
	}
	dueDate := time.Date(ref.Year(), ref.Month(), dueDay, 0, 0, 0, 0, time.UTC)
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("data_vencimento inválida (use AAAA-MM-DD)"))
			return
		}
		dueDate = parsed
	}

	invoice := models.Invoice{
		TenantID:       market.ID,
		Value:          value,
		ReferenceMonth: refMonth,
		Status:         models.InvoiceStatusPending,
		DueDate:        dueDate,
	}
	if err := fc.DB.Create(&invoice).Error; err != nil {
		utils.Audit("create", "fatura", nil, p.Actor(), nil,
			gin.H{"tenant_id": market.ID, "mes_referencia": refMonth}, false, err.Error())
		utils.RespondError(c, http.StatusInternalServerError, errors.New("erro ao emitir fatura"))
		return
	}

	utils.Audit("create", "fatura", invoice.ID, p.Actor(), nil,
		gin.H{"tenant_id": market.ID, "mes_referencia": refMonth, "valor": value}, true, "")
	utils.RespondJSON(c, http.StatusCreated, "Fatura emitida", invoice)
}

// MarkInvoicePaid settles an invoice.
func (fc *FinanceController) MarkInvoicePaid(c *gin.Context) {
	p, _, ok := requestScope(c)
	if !ok {
		return
	}
	market, ok := fc.findTenant(c)
	if !ok {
		return
	}

	invoiceID, err := strconv.Atoi(c.Param("fatura_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id de fatura inválido"))
		return
	}

	var invoice models.Invoice
	err = fc.DB.Where("tenant_id = ?", market.ID).First(&invoice, invoiceID).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("fatura %d não encontrada", invoiceID))
		return
	}
	if invoice.Status == models.InvoiceStatusPaid {
		utils.RespondError(c, http.StatusConflict, errors.New("fatura já está paga"))
		return
	}

	now := time.Now()
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidAt = &now
	if err := fc.DB.Save(&invoice).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.Audit("update", "fatura", invoice.ID, p.Actor(),
		gin.H{"status": models.InvoiceStatusPending},
		gin.H{"status": models.InvoiceStatusPaid}, true, "")
	utils.RespondJSON(c, http.StatusOK, "Fatura paga", invoice)
}

func (fc *FinanceController) findTenant(c *gin.Context) (*models.Supermarket, bool) {
	id, err := strconv.Atoi(c.Param("tenant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id de supermercado inválido"))
		return nil, false
	}

	var market models.Supermarket
	if err := fc.DB.First(&market, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("supermercado %d não encontrado", id))
		return nil, false
	}
	return &market, true
}
