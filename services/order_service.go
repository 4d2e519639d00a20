package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// totalTolerance is the absolute drift allowed between a caller-supplied
// total and the total computed from the line items. Anything beyond a
// cent is treated as tampering or a client-side bug.
const totalTolerance = 0.01

// OrderService implements the order reconciliation rules: client
// upsert, per-tenant order numbering, total validation, the
// pending→faturado guard and by-phone resolution.
type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

type LineItemInput struct {
	Product   string
	Quantity  int
	UnitPrice float64
}

type CreateOrderInput struct {
	CustomerName   string
	Phone          string
	DeliveryMethod *string
	Address        *string
	Note           *string
	OrderedAt      *time.Time
	Total          *float64
	Items          []LineItemInput
}

type UpdateOrderInput struct {
	CustomerName   *string
	Phone          *string
	Status         *string
	DeliveryMethod *string
	Address        *string
	Note           *string
	Total          *float64
	// Items == nil leaves the item list untouched; a non-nil slice
	// replaces it wholesale.
	Items *[]LineItemInput
}

// ClientUpsertError reports a failed find-or-create of the client
// record behind an order. Client linkage is best-effort: the caller
// decides to ignore this, it never aborts order creation.
type ClientUpsertError struct {
	TenantID uint
	Phone    string
	Err      error
}

func (e *ClientUpsertError) Error() string {
	return fmt.Sprintf("upsert do cliente (tenant %d, telefone %q) falhou: %v", e.TenantID, e.Phone, e.Err)
}

func (e *ClientUpsertError) Unwrap() error { return e.Err }

// ReconcileTotal computes the order total from its line items and, when
// the caller supplied an explicit total, cross-validates the two within
// totalTolerance.
func (s *OrderService) ReconcileTotal(items []LineItemInput, explicit *float64) (float64, error) {
	var computed float64
	for _, item := range items {
		if item.Product == "" {
			return 0, utils.NewError(utils.KindValidation, "item sem nome_produto")
		}
		if item.Quantity < 0 {
			return 0, utils.NewError(utils.KindValidation, "quantidade negativa no item %q", item.Product)
		}
		if item.UnitPrice < 0 {
			return 0, utils.NewError(utils.KindValidation, "preco_unitario negativo no item %q", item.Product)
		}
		computed += float64(item.Quantity) * item.UnitPrice
	}

	if explicit != nil && math.Abs(*explicit-computed) > totalTolerance {
		return 0, utils.NewError(utils.KindValidation,
			"total informado (%.2f) difere do total calculado pelos itens (%.2f)", *explicit, computed)
	}
	return computed, nil
}

// NextOrderNumber returns max(numero_pedido)+1 for the tenant, starting
// at 1. It must run inside the same transaction as the insert; the
// unique index on (tenant_id, numero_pedido) turns a concurrent race
// into a conflict the caller retries.
func (s *OrderService) NextOrderNumber(tx *gorm.DB, tenantID uint) (int, error) {
	var current int
	err := tx.Model(&models.Order{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(numero_pedido), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, utils.WrapError(utils.KindInternal, err, "falha ao calcular numero_pedido")
	}
	return current + 1, nil
}

// EnsureMutable rejects any mutation of an already-invoiced order.
// Faturado is terminal: billed orders are immutable audit records.
func (s *OrderService) EnsureMutable(order *models.Order) error {
	if order.Invoiced() {
		return utils.NewError(utils.KindPreconditionFailed,
			"pedido %d já faturado e não pode ser alterado ou excluído", order.ID)
	}
	return nil
}

// UpsertClient finds or creates the durable client record for a
// name/phone pair. Comparison is digits-only, so the same number with
// different punctuation lands on one client instead of two. Name-only
// submissions may match an existing client but never create one (that
// would grow placeholder emails without bound).
func (s *OrderService) UpsertClient(db *gorm.DB, tenantID uint, name, phone string, address *string) (*models.Client, error) {
	key := utils.NormalizePhone(phone)
	if key == "" && name == "" {
		return nil, nil
	}

	found, err := s.findClient(db, tenantID, key, name)
	if err != nil {
		return nil, &ClientUpsertError{TenantID: tenantID, Phone: phone, Err: err}
	}

	if found != nil {
		changed := false
		if phone != "" && found.Phone != phone {
			found.Phone = phone
			changed = true
		}
		if name != "" && found.Name != name {
			found.Name = name
			changed = true
		}
		if address != nil && (found.Address == nil || *found.Address != *address) {
			found.Address = address
			changed = true
		}
		if !found.Active {
			found.Active = true
			changed = true
		}
		if changed {
			if err := db.Save(found).Error; err != nil {
				return nil, &ClientUpsertError{TenantID: tenantID, Phone: phone, Err: err}
			}
		}
		return found, nil
	}

	if key == "" {
		return nil, nil
	}

	client := &models.Client{
		Name:     name,
		Email:    fmt.Sprintf("cliente_%d_%s@queiroz.local", tenantID, key),
		Phone:    phone,
		Address:  address,
		Active:   true,
		TenantID: tenantID,
	}
	if client.Name == "" {
		client.Name = "Cliente " + key
	}

	if err := db.Create(client).Error; err != nil {
		// Placeholder email collided with an existing row; retry once
		// with a random suffix before giving up.
		client.ID = 0
		client.Email = fmt.Sprintf("cliente_%d_%s_%s@queiroz.local", tenantID, key, uuid.NewString()[:8])
		if err := db.Create(client).Error; err != nil {
			return nil, &ClientUpsertError{TenantID: tenantID, Phone: phone, Err: err}
		}
	}
	return client, nil
}

func (s *OrderService) findClient(db *gorm.DB, tenantID uint, phoneKey, name string) (*models.Client, error) {
	if phoneKey != "" {
		var candidates []models.Client
		if err := db.Where("tenant_id = ?", tenantID).Find(&candidates).Error; err != nil {
			return nil, err
		}
		for i := range candidates {
			if utils.NormalizePhone(candidates[i].Phone) == phoneKey {
				return &candidates[i], nil
			}
		}
	}

	if name != "" {
		var byName models.Client
		err := db.Where("tenant_id = ? AND nome = ?", tenantID, name).First(&byName).Error
		if err == nil {
			return &byName, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// Create reconciles and persists a new order for the tenant. The client
// upsert happens outside the order transaction and its failure is
// deliberately ignored after logging: an unlinked order beats a lost
// one.
func (s *OrderService) Create(tenantID uint, actor string, in CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, utils.NewError(utils.KindValidation, "nome_cliente é obrigatório")
	}
	if len(in.Items) == 0 {
		return nil, utils.NewError(utils.KindValidation, "pedido deve conter ao menos um item")
	}

	total, err := s.ReconcileTotal(in.Items, in.Total)
	if err != nil {
		return nil, err
	}

	var clientID *uint
	client, upsertErr := s.UpsertClient(s.DB, tenantID, in.CustomerName, in.Phone, in.Address)
	if upsertErr != nil {
		utils.ErrorLogger.Errorf("pedido segue sem vínculo de cliente: %v", upsertErr)
		utils.Audit("create", "cliente", nil, actor, nil,
			map[string]interface{}{"telefone": in.Phone, "nome": in.CustomerName},
			false, upsertErr.Error())
	} else if client != nil {
		clientID = &client.ID
	}

	orderedAt := time.Now()
	if in.OrderedAt != nil {
		orderedAt = *in.OrderedAt
	}

	var order *models.Order
	for attempt := 0; ; attempt++ {
		order, err = s.insertOrder(tenantID, clientID, orderedAt, total, in)
		if err == nil {
			return order, nil
		}
		if attempt == 0 && isDuplicateKey(err) {
			continue
		}
		if isDuplicateKey(err) {
			return nil, utils.WrapError(utils.KindConflict, err, "conflito ao numerar o pedido")
		}
		return nil, err
	}
}

func (s *OrderService) insertOrder(tenantID uint, clientID *uint, orderedAt time.Time, total float64, in CreateOrderInput) (*models.Order, error) {
	var order *models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		number, err := s.NextOrderNumber(tx, tenantID)
		if err != nil {
			return err
		}

		order = &models.Order{
			TenantID:       tenantID,
			ClientID:       clientID,
			CustomerName:   in.CustomerName,
			Phone:          in.Phone,
			Total:          total,
			Status:         models.OrderStatusPending,
			Number:         number,
			OrderedAt:      orderedAt,
			DeliveryMethod: in.DeliveryMethod,
			Address:        in.Address,
			Note:           in.Note,
			Items:          buildItems(in.Items),
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	fillSubtotals(order.Items)
	return order, nil
}

// Update applies a partial update under the status guard. A non-nil
// item list replaces the stored one wholesale and the total is
// recomputed from it (cross-validated when an explicit total came
// along). Any change flips the modificado flag.
func (s *OrderService) Update(order *models.Order, in UpdateOrderInput) error {
	if err := s.EnsureMutable(order); err != nil {
		return err
	}

	if in.Status != nil &&
		*in.Status != models.OrderStatusPending &&
		*in.Status != models.OrderStatusInvoiced {
		return utils.NewError(utils.KindValidation, "status %q inválido (use pendente ou faturado)", *in.Status)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		changed := false

		if in.CustomerName != nil && *in.CustomerName != order.CustomerName {
			order.CustomerName = *in.CustomerName
			changed = true
		}
		if in.Phone != nil && *in.Phone != order.Phone {
			order.Phone = *in.Phone
			changed = true
		}
		if in.DeliveryMethod != nil {
			order.DeliveryMethod = in.DeliveryMethod
			changed = true
		}
		if in.Address != nil {
			order.Address = in.Address
			changed = true
		}
		if in.Note != nil {
			order.Note = in.Note
			changed = true
		}

		if in.Items != nil {
			total, err := s.ReconcileTotal(*in.Items, in.Total)
			if err != nil {
				return err
			}
			if err := tx.Where("pedido_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return utils.WrapError(utils.KindInternal, err, "falha ao remover itens antigos")
			}
			items := buildItems(*in.Items)
			for i := range items {
				items[i].OrderID = order.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return utils.WrapError(utils.KindInternal, err, "falha ao gravar novos itens")
				}
			}
			fillSubtotals(items)
			order.Items = items
			order.Total = total
			changed = true
		} else if in.Total != nil {
			// Explicit total without items still gets cross-validated
			// against what is stored.
			current := make([]LineItemInput, 0, len(order.Items))
			for _, item := range order.Items {
				current = append(current, LineItemInput{
					Product:   item.Product,
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
				})
			}
			total, err := s.ReconcileTotal(current, in.Total)
			if err != nil {
				return err
			}
			if total != order.Total {
				order.Total = total
				changed = true
			}
		}

		if changed {
			order.Modified = true
		}
		if in.Status != nil && *in.Status != order.Status {
			order.Status = *in.Status
			changed = true
		}
		if !changed {
			return nil
		}
		return tx.Omit(clause.Associations).Save(order).Error
	})
}

// Delete removes a pending order and its items. Invoiced orders are
// refused by the same guard that blocks updates.
func (s *OrderService) Delete(order *models.Order) error {
	if err := s.EnsureMutable(order); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pedido_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}

// FindPendingByPhone locates "the" order to mutate when the caller only
// knows a phone number: the most recent pending order in scope. An
// exact match is tried first, then a digits-only comparison. Invoiced
// orders are never candidates; a late agent update must get a clean
// not-found rather than silently touch a billed order.
func (s *OrderService) FindPendingByPhone(tenantID *uint, rawPhone string) (*models.Order, error) {
	scope := s.DB.Preload("Items").Where("status = ?", models.OrderStatusPending)
	if tenantID != nil {
		scope = scope.Where("tenant_id = ?", *tenantID)
	}

	var order models.Order
	err := scope.Session(&gorm.Session{}).
		Where("telefone = ?", rawPhone).
		Order("data_pedido desc, id desc").
		First(&order).Error
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.WrapError(utils.KindInternal, err, "falha ao buscar pedido por telefone")
	}

	key := utils.NormalizePhone(rawPhone)
	if key != "" {
		var candidates []models.Order
		err := scope.Session(&gorm.Session{}).
			Order("data_pedido desc, id desc").
			Find(&candidates).Error
		if err != nil {
			return nil, utils.WrapError(utils.KindInternal, err, "falha ao buscar pedido por telefone")
		}
		for i := range candidates {
			if utils.NormalizePhone(candidates[i].Phone) == key {
				return &candidates[i], nil
			}
		}
	}

	return nil, utils.NewError(utils.KindNotFound,
		"nenhum pedido pendente encontrado para o telefone %s", rawPhone)
}

func buildItems(inputs []LineItemInput) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.OrderItem{
			Product:   in.Product,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		})
	}
	return items
}

func fillSubtotals(items []models.OrderItem) {
	for i := range items {
		items[i].Subtotal = float64(items[i].Quantity) * items[i].UnitPrice
	}
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
