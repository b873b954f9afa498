package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	FullName     string    `bun:"full_name,notnull" json:"full_name"`
	Email        string    `bun:"email,unique,notnull" json:"email"`
	Phone        string    `bun:"phone" json:"phone"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         Role      `bun:"role,notnull" json:"role"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
}

type SignupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}
