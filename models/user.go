package models

import "time"

const (
	RoleAdmin       = "admin"
	RoleSupermarket = "supermarket"
	RoleClient      = "cliente"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"column:nome;type:varchar(255);not null" json:"nome"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:senha_hash;type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null;default:'cliente'" json:"role"`
	TenantID     *uint     `gorm:"index" json:"tenant_id"`
	CreatedAt    time.Time `json:"created_at"`
}
