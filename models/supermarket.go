package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONColumn stores loosely structured JSON (opening hours, payment
// methods, product categories) in a plain text column so the same model
// works on Postgres and SQLite.
type JSONColumn json.RawMessage

func (j JSONColumn) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONColumn) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = JSONColumn(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONColumn", value)
	}
	return nil
}

func (j JSONColumn) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONColumn) UnmarshalJSON(data []byte) error {
	*j = append((*j)[0:0], data...)
	return nil
}

// Supermarket is a tenant: the unit of data isolation. Every client and
// order belongs to exactly one supermarket; users too, except admins,
// which have no tenant. Column names keep the original schema.
type Supermarket struct {
	ID    uint    `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"column:nome;type:varchar(100);not null" json:"nome"`
	CNPJ  *string `gorm:"column:cnpj;type:varchar(18);uniqueIndex" json:"cnpj"`
	Email string  `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone string  `gorm:"column:telefone;type:varchar(20);not null" json:"telefone"`

	CEP          string  `gorm:"column:cep;type:varchar(9)" json:"cep"`
	Address      string  `gorm:"column:endereco;type:varchar(200)" json:"endereco"`
	Number       string  `gorm:"column:numero;type:varchar(10)" json:"numero"`
	Complement   *string `gorm:"column:complemento;type:varchar(100)" json:"complemento"`
	Neighborhood string  `gorm:"column:bairro;type:varchar(100)" json:"bairro"`
	City         string  `gorm:"column:cidade;type:varchar(100)" json:"cidade"`
	State        string  `gorm:"column:estado;type:varchar(2)" json:"estado"`

	OpeningHours      JSONColumn `gorm:"column:horario_funcionamento;type:text" json:"horario_funcionamento"`
	PaymentMethods    JSONColumn `gorm:"column:metodos_pagamento;type:text" json:"metodos_pagamento"`
	ProductCategories JSONColumn `gorm:"column:categorias_produtos;type:text" json:"categorias_produtos"`
	StorageCapacity   *int       `gorm:"column:capacidade_estocagem" json:"capacidade_estocagem"`

	ContactPerson *string  `gorm:"column:responsavel;type:varchar(100)" json:"responsavel"`
	MonthlyValue  *float64 `gorm:"column:valor_mensal" json:"valor_mensal"`
	BillingDueDay *int     `gorm:"column:dia_vencimento" json:"dia_vencimento"`

	LogoURL *string `gorm:"column:logo_url" json:"logo_url"`

	Plan        string  `gorm:"column:plano;type:varchar(20);not null;default:'basico'" json:"plano"`
	Active      bool    `gorm:"column:ativo;not null;default:true" json:"ativo"`
	CustomToken *string `gorm:"column:custom_token" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Supermarket) TableName() string { return "supermarkets" }
