package models

import "time"

// SupermarketHistory is an append-only change log entry. Rows are
// written on every tenant mutation and never updated or deleted.
type SupermarketHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SupermarketID uint      `gorm:"not null;index" json:"supermarket_id"`
	Field         string    `gorm:"column:campo_alterado;type:varchar(50);not null" json:"campo_alterado"`
	OldValue      *string   `gorm:"column:valor_anterior;type:text" json:"valor_anterior"`
	NewValue      *string   `gorm:"column:valor_novo;type:text" json:"valor_novo"`
	ChangedBy     string    `gorm:"column:usuario_alteracao;not null" json:"usuario_alteracao"`
	ChangedAt     time.Time `gorm:"column:data_alteracao;not null;autoCreateTime" json:"data_alteracao"`
}

func (SupermarketHistory) TableName() string { return "supermarket_history" }
