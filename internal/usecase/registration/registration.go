package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Registration-Saga/internal/dto"
	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/internal/repo"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/andreyxaxa/Registration-Saga/pkg/types/errs"
	"github.com/google/uuid"
)

type RegistrationUseCase struct {
	userRepo   repo.UserRepo
	outboxRepo repo.OutboxRepo
	transactor repo.Transactor

	logger logger.Interface
}

func New(
	userRepo repo.UserRepo,
	outboxRepo repo.OutboxRepo,
	transactor repo.Transactor,
	l logger.Interface,
) *RegistrationUseCase {
	return &RegistrationUseCase{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		transactor: transactor,
		logger:     l,
	}
}

// RegisterUser пишет пользователя и outbox-запись в одной локальной
// транзакции: либо есть и то и другое, либо ничего. Запрос успешен,
// как только транзакция закоммичена - дальше работает релеер.
func (uc *RegistrationUseCase) RegisterUser(ctx context.Context, input dto.RegisterUser) (*entity.UserCredential, error) {
	traceID := input.TraceID
	if traceID == "" {
		traceID = "internal-" + uuid.NewString()
	}

	user := &entity.UserCredential{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     input.Email,
		FullName:  input.FullName,
		Role:      input.Role,
		CreatedAt: time.Now(),
	}

	event := entity.NewRegistrationEvent(user.Username, user.Email, user.FullName, user.Role, traceID)

	// Ошибка сериализации - ошибка программиста, фатальна для запроса,
	// ретраями не лечится.
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("RegistrationUseCase - RegisterUser - json.Marshal: %w", err)
	}

	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// 1. доменная запись
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("RegistrationUseCase - RegisterUser - uc.userRepo.Create: %w", err)
		}

		// 2. outbox в той же транзакции
		msg := &entity.OutboxMessage{
			AggregateID: user.Username,
			Payload:     payload,
			TraceID:     traceID,
			SpanID:      input.SpanID,
			Processed:   false,
			RetryCount:  0,
			CreatedAt:   time.Now(),
		}
		if err := uc.outboxRepo.Create(ctx, msg); err != nil {
			return fmt.Errorf("RegistrationUseCase - RegisterUser - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("RegistrationUseCase - RegisterUser - uc.transactor.WithinTransaction: %w", err)
	}

	uc.logger.Info("registered user [%s] with traceId [%s]", user.Username, traceID)

	return user, nil
}

// ReverseRegistration - компенсация саги: откатывает регистрацию.
// Отсутствующий пользователь - уже конечное состояние, повтор не сходится,
// поэтому логируем и отвечаем успехом.
func (uc *RegistrationUseCase) ReverseRegistration(ctx context.Context, username, reason string) error {
	uc.logger.Warn("saga compensation: reversing registration for [%s], reason: %s", username, reason)

	_, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			uc.logger.Error(err, fmt.Sprintf("RegistrationUseCase - ReverseRegistration - user [%s] not found for reversal", username))

			return nil
		}

		return fmt.Errorf("RegistrationUseCase - ReverseRegistration - uc.userRepo.GetByUsername: %w", err)
	}

	err = uc.userRepo.Delete(ctx, username)
	if err != nil {
		return fmt.Errorf("RegistrationUseCase - ReverseRegistration - uc.userRepo.Delete: %w", err)
	}

	uc.logger.Info("saga compensation: user [%s] removed from identity store", username)

	return nil
}

func (uc *RegistrationUseCase) GetPendingMessages(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxMessage, error) {
	msgs, err := uc.outboxRepo.GetPending(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("RegistrationUseCase - GetPendingMessages - uc.outboxRepo.GetPending: %w", err)
	}

	return msgs, nil
}

func (uc *RegistrationUseCase) MarkAsProcessed(ctx context.Context, id int64) error {
	err := uc.outboxRepo.MarkProcessed(ctx, id)
	if err != nil {
		return fmt.Errorf("RegistrationUseCase - MarkAsProcessed - uc.outboxRepo.MarkProcessed: %w", err)
	}

	return nil
}

func (uc *RegistrationUseCase) IncrementRetryCount(ctx context.Context, id int64) error {
	err := uc.outboxRepo.IncrementRetryCount(ctx, id)
	if err != nil {
		return fmt.Errorf("RegistrationUseCase - IncrementRetryCount - uc.outboxRepo.IncrementRetryCount: %w", err)
	}

	return nil
}

func (uc *RegistrationUseCase) GetPoisonedMessages(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxMessage, error) {
	msgs, err := uc.outboxRepo.GetPoisoned(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("RegistrationUseCase - GetPoisonedMessages - uc.outboxRepo.GetPoisoned: %w", err)
	}

	return msgs, nil
}

// FlagPoisonedMessages только сигналит оператору - автоматически
// такие записи не разруливаются.
func (uc *RegistrationUseCase) FlagPoisonedMessages(ctx context.Context, maxRetries int) error {
	msgs, err := uc.outboxRepo.GetPoisoned(ctx, maxRetries, 100)
	if err != nil {
		return fmt.Errorf("RegistrationUseCase - FlagPoisonedMessages - uc.outboxRepo.GetPoisoned: %w", err)
	}

	for _, msg := range msgs {
		uc.logger.Warn("outbox poison message: id=%d aggregate=%s retries=%d, manual inspection required",
			msg.ID, msg.AggregateID, msg.RetryCount)
	}

	return nil
}

func (uc *RegistrationUseCase) CleanupOutbox(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention)

	count, err := uc.outboxRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("RegistrationUseCase - CleanupOutbox - uc.outboxRepo.DeleteProcessedBefore: %w", err)
	}

	if count > 0 {
		uc.logger.Info("outbox cleanup: purged %d processed messages", count)
	}

	return nil
}
