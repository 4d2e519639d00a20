package models

import "gorm.io/gorm"

// OrderItem is a line of a single order. Items are owned exclusively by
// their order: they are removed when the order is deleted or replaced
// wholesale when an update carries a new item list.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"column:pedido_id;not null;index" json:"pedido_id"`
	Product   string  `gorm:"column:nome_produto;type:varchar(200);not null" json:"nome_produto"`
	Quantity  int     `gorm:"column:quantidade;not null" json:"quantidade"`
	UnitPrice float64 `gorm:"column:preco_unitario;type:decimal(10,2);not null" json:"preco_unitario"`

	Subtotal float64 `gorm:"-" json:"subtotal"`
}

func (OrderItem) TableName() string { return "itens_pedido" }

func (i *OrderItem) AfterFind(*gorm.DB) error {
	i.Subtotal = float64(i.Quantity) * i.UnitPrice
	return nil
}
