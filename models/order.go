package models

import "time"

// Order status values. "faturado" is terminal: once an order has been
// billed it becomes an immutable audit record.
const (
	OrderStatusPending  = "pendente"
	OrderStatusInvoiced = "faturado"
)

type Order struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	TenantID uint  `gorm:"not null;index" json:"tenant_id"`
	ClientID *uint `gorm:"column:cliente_id;index" json:"cliente_id"`

	// Customer name and phone are denormalized on the order and kept
	// even when a Client row is linked.
	CustomerName string `gorm:"column:nome_cliente;type:varchar(100);not null" json:"nome_cliente"`
	Phone        string `gorm:"column:telefone;type:varchar(20)" json:"telefone"`

	Total  float64 `gorm:"column:valor_total;type:decimal(10,2);not null;default:0.00" json:"valor_total"`
	Status string  `gorm:"type:varchar(20);not null;default:'pendente'" json:"status"`
	Number int     `gorm:"column:numero_pedido;not null;default:0;index" json:"numero_pedido"`

	OrderedAt time.Time `gorm:"column:data_pedido;not null" json:"data_pedido"`

	DeliveryMethod *string `gorm:"column:forma;type:varchar(50)" json:"forma"`
	Address        *string `gorm:"column:endereco;type:varchar(200)" json:"endereco"`
	Note           *string `gorm:"column:observacao;type:varchar(500)" json:"observacao"`

	// Set whenever a pending order is touched after creation, so an
	// operator can spot agent-edited orders at a glance.
	Modified bool `gorm:"column:modificado;not null;default:false" json:"modificado"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"itens"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Order) TableName() string { return "pedidos" }

// Invoiced reports whether the order reached its terminal state.
func (o *Order) Invoiced() bool { return o.Status == OrderStatusInvoiced }
