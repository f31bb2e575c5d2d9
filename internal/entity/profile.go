package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile - проекция пользователя в profile-хранилище.
// Создается только из полей события, источник не перечитывается.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}
