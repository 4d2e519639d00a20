package models

import "time"

const (
	InvoiceStatusPending = "Pendente"
	InvoiceStatusPaid    = "Pago"
)

// Invoice is the monthly billing record the admin generates for a
// tenant. The amount prefers the tenant's configured monthly value and
// falls back to the per-plan price table.
type Invoice struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	TenantID       uint       `gorm:"not null;index" json:"tenant_id"`
	Value          float64    `gorm:"column:valor;not null" json:"valor"`
	ReferenceMonth string     `gorm:"column:mes_referencia;type:varchar(7);not null" json:"mes_referencia"`
	Status         string     `gorm:"type:varchar(20);not null;default:'Pendente'" json:"status"`
	DueDate        time.Time  `gorm:"column:data_vencimento;not null" json:"data_vencimento"`
	PaidAt         *time.Time `gorm:"column:data_pagamento" json:"data_pagamento"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Invoice) TableName() string { return "faturas" }
