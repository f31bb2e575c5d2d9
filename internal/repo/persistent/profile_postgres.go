package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/pkg/postgres"
	"github.com/andreyxaxa/Registration-Saga/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	profilesTable = "profiles"

	// Columns
	profileIDColumn        = "id"
	profileUsernameColumn  = "username"
	profileEmailColumn     = "email"
	profileFullNameColumn  = "full_name"
	profileCreatedAtColumn = "created_at"
)

type ProfileRepo struct {
	*postgres.Postgres
}

func NewProfileRepo(pg *postgres.Postgres) *ProfileRepo {
	return &ProfileRepo{pg}
}

// Create опирается на уникальный индекс по username: конкурентные доставки
// одного события решает БД, а не предварительная проверка.
func (r *ProfileRepo) Create(ctx context.Context, profile *entity.Profile) error {
	sql, args, err := r.Builder.
		Insert(profilesTable).
		Columns(
			profileIDColumn,
			profileUsernameColumn,
			profileEmailColumn,
			profileFullNameColumn,
			profileCreatedAtColumn,
		).
		Values(
			profile.ID,
			profile.Username,
			profile.Email,
			profile.FullName,
			profile.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("ProfileRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ProfileRepo - Create: %w", errs.ErrAlreadyExists)
		}

		return fmt.Errorf("ProfileRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *ProfileRepo) GetByUsername(ctx context.Context, username string) (*entity.Profile, error) {
	sql, args, err := r.Builder.
		Select(
			profileIDColumn,
			profileUsernameColumn,
			profileEmailColumn,
			profileFullNameColumn,
			profileCreatedAtColumn,
		).
		From(profilesTable).
		Where(squirrel.Eq{profileUsernameColumn: username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ProfileRepo - GetByUsername - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var profile entity.Profile
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.FullName,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ProfileRepo - GetByUsername: %w", errs.ErrRecordNotFound)
		}

		return nil, fmt.Errorf("ProfileRepo - GetByUsername - executor.QueryRow: %w", err)
	}

	return &profile, nil
}
