package entity

import (
	"time"

	"github.com/google/uuid"
)

// Конверты событий. EventID генерируется один раз при создании и не
// перегенерируется при ретраях - по нему консьюмеры дедуплицируют.
// Имена json-полей - контракт между сервисами, менять нельзя.

type RegistrationEvent struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`

	EventID    string    `json:"eventId"`
	TraceID    string    `json:"traceId"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewRegistrationEvent(username, email, fullName, role, traceID string) RegistrationEvent {
	return RegistrationEvent{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Role:       role,
		EventID:    uuid.NewString(),
		TraceID:    traceID,
		OccurredAt: time.Now(),
	}
}

// CompensationEvent - сигнал саге откатить регистрацию.
type CompensationEvent struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`

	EventID    string    `json:"eventId"`
	TraceID    string    `json:"traceId"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewCompensationEvent(username, reason, traceID string) CompensationEvent {
	return CompensationEvent{
		Username:   username,
		Reason:     reason,
		EventID:    uuid.NewString(),
		TraceID:    traceID,
		OccurredAt: time.Now(),
	}
}
