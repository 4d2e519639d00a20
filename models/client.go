package models

import "time"

// Client is a supermarket customer. Most rows are created lazily from
// incoming orders, with a synthesized placeholder email, and are deduped
// by digits-only phone comparison rather than a database constraint.
type Client struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"column:nome;type:varchar(100);not null" json:"nome"`
	Email string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone string `gorm:"column:telefone;type:varchar(20);not null" json:"telefone"`
	CPF   *string `gorm:"column:cpf;type:varchar(14);uniqueIndex" json:"cpf"`

	Address      *string `gorm:"column:endereco;type:varchar(200)" json:"endereco"`
	Number       *string `gorm:"column:numero;type:varchar(10)" json:"numero"`
	Complement   *string `gorm:"column:complemento;type:varchar(100)" json:"complemento"`
	Neighborhood *string `gorm:"column:bairro;type:varchar(100)" json:"bairro"`
	City         *string `gorm:"column:cidade;type:varchar(100)" json:"cidade"`
	State        *string `gorm:"column:estado;type:varchar(2)" json:"estado"`
	CEP          *string `gorm:"column:cep;type:varchar(9)" json:"cep"`

	Active   bool `gorm:"column:ativo;not null;default:true" json:"ativo"`
	TenantID uint `gorm:"not null;index" json:"tenant_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled by the controllers on list/detail, never persisted.
	TotalOrders int64 `gorm:"-" json:"total_pedidos"`
}

func (Client) TableName() string { return "clientes" }
