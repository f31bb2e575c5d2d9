package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/Registration-Saga/internal/entity"
)

type (
	UserRepo interface {
		Create(ctx context.Context, user *entity.UserCredential) error
		GetByUsername(ctx context.Context, username string) (*entity.UserCredential, error)
		Delete(ctx context.Context, username string) error
	}

	ProfileRepo interface {
		Create(ctx context.Context, profile *entity.Profile) error
		GetByUsername(ctx context.Context, username string) (*entity.Profile, error)
	}

	OutboxRepo interface {
		Create(ctx context.Context, msg *entity.OutboxMessage) error
		GetPending(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxMessage, error)
		MarkProcessed(ctx context.Context, id int64) error
		IncrementRetryCount(ctx context.Context, id int64) error
		GetPoisoned(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxMessage, error)
		DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
