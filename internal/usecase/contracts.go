package usecase

import (
	"context"
	"time"

	"github.com/andreyxaxa/Registration-Saga/internal/dto"
	"github.com/andreyxaxa/Registration-Saga/internal/entity"
)

type (
	RegistrationUseCase interface {
		RegisterUser(ctx context.Context, input dto.RegisterUser) (*entity.UserCredential, error)
		ReverseRegistration(ctx context.Context, username, reason string) error

		// Операции релеера над outbox.
		GetPendingMessages(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxMessage, error)
		MarkAsProcessed(ctx context.Context, id int64) error
		IncrementRetryCount(ctx context.Context, id int64) error
		GetPoisonedMessages(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxMessage, error)
		FlagPoisonedMessages(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context, retention time.Duration) error
	}

	ProfileUseCase interface {
		CreateFromEvent(ctx context.Context, event entity.RegistrationEvent) error
	}
)
