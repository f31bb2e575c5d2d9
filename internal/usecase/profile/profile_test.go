package profile_test

import (
	"context"
	"testing"

	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/internal/usecase/profile"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/andreyxaxa/Registration-Saga/pkg/types/errs"
	"github.com/stretchr/testify/require"
)

// profileRepoFake воспроизводит поведение уникального индекса по username.
type profileRepoFake struct {
	profiles map[string]*entity.Profile
}

func newProfileRepoFake() *profileRepoFake {
	return &profileRepoFake{profiles: make(map[string]*entity.Profile)}
}

func (f *profileRepoFake) Create(_ context.Context, p *entity.Profile) error {
	if _, ok := f.profiles[p.Username]; ok {
		return errs.ErrAlreadyExists
	}
	f.profiles[p.Username] = p

	return nil
}

func (f *profileRepoFake) GetByUsername(_ context.Context, username string) (*entity.Profile, error) {
	p, ok := f.profiles[username]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}

	return p, nil
}

func TestCreateFromEventNormalizesUsername(t *testing.T) {
	repo := newProfileRepoFake()
	uc := profile.New(repo, logger.NewNop())

	event := entity.NewRegistrationEvent("  Alice  ", "alice@example.com", "Alice A", "ROLE_USER", "trace-1")

	err := uc.CreateFromEvent(context.Background(), event)
	require.NoError(t, err)

	require.Contains(t, repo.profiles, "alice")
	require.Equal(t, "alice@example.com", repo.profiles["alice"].Email)
}

func TestCreateFromEventDuplicateDeliveryIsNoOp(t *testing.T) {
	repo := newProfileRepoFake()
	uc := profile.New(repo, logger.NewNop())

	event := entity.NewRegistrationEvent("alice", "alice@example.com", "Alice A", "ROLE_USER", "trace-1")

	require.NoError(t, uc.CreateFromEvent(context.Background(), event))

	first := repo.profiles["alice"]

	// повторная доставка того же события - успех без второй вставки
	require.NoError(t, uc.CreateFromEvent(context.Background(), event))
	require.Len(t, repo.profiles, 1)
	require.Same(t, first, repo.profiles["alice"])
}

func TestCreateFromEventSimulatedFailureIsNonRetriable(t *testing.T) {
	repo := newProfileRepoFake()
	uc := profile.New(repo, logger.NewNop())

	event := entity.NewRegistrationEvent("fail_test", "fail@example.com", "Fail Test", "ROLE_USER", "trace-1")

	err := uc.CreateFromEvent(context.Background(), event)
	require.ErrorIs(t, err, errs.ErrNonRetriable)
	require.Empty(t, repo.profiles)
}

func TestCreateFromEventEmptyUsernameIsNonRetriable(t *testing.T) {
	repo := newProfileRepoFake()
	uc := profile.New(repo, logger.NewNop())

	event := entity.NewRegistrationEvent("   ", "blank@example.com", "", "ROLE_USER", "trace-1")

	err := uc.CreateFromEvent(context.Background(), event)
	require.ErrorIs(t, err, errs.ErrNonRetriable)
	require.Empty(t, repo.profiles)
}
