package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/internal/repo"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/andreyxaxa/Registration-Saga/pkg/types/errs"
	"github.com/google/uuid"
)

// Юзернейм, на котором проекция всегда падает непоправимо.
// Нужен для прогона компенсационной ветки саги на стенде.
const simulatedFailureUsername = "fail_test"

type ProfileUseCase struct {
	profileRepo repo.ProfileRepo

	logger logger.Interface
}

func New(profileRepo repo.ProfileRepo, l logger.Interface) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		logger:      l,
	}
}

// CreateFromEvent идемпотентно проецирует событие регистрации.
// Профиль строится только из полей события - source store не перечитывается.
// Дубль доставки гасится уникальным индексом по username, а не
// предварительным чтением: две конкурентные доставки не вставят дважды.
func (uc *ProfileUseCase) CreateFromEvent(ctx context.Context, event entity.RegistrationEvent) error {
	username := strings.ToLower(strings.TrimSpace(event.Username))

	if username == "" {
		return fmt.Errorf("ProfileUseCase - CreateFromEvent - empty username: %w", errs.ErrNonRetriable)
	}

	if username == simulatedFailureUsername {
		return fmt.Errorf("ProfileUseCase - CreateFromEvent - simulated saga failure for user %s: %w",
			username, errs.ErrNonRetriable)
	}

	profile := &entity.Profile{
		ID:        uuid.New(),
		Username:  username,
		Email:     event.Email,
		FullName:  event.FullName,
		CreatedAt: time.Now(),
	}

	err := uc.profileRepo.Create(ctx, profile)
	if err != nil {
		// повторная доставка - no-op успех
		if errors.Is(err, errs.ErrAlreadyExists) {
			uc.logger.Info("profile for [%s] already exists, duplicate delivery ignored", username)

			return nil
		}

		return fmt.Errorf("ProfileUseCase - CreateFromEvent - uc.profileRepo.Create: %w", err)
	}

	uc.logger.Info("profile created for [%s]", username)

	return nil
}
