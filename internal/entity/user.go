package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserCredential - запись в identity-хранилище.
type UserCredential struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
