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
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// Table
	usersTable = "user_credentials"

	// Columns
	userIDColumn        = "id"
	userUsernameColumn  = "username"
	userEmailColumn     = "email"
	userFullNameColumn  = "full_name"
	userRoleColumn      = "role"
	userCreatedAtColumn = "created_at"
)

// PostgreSQL unique_violation
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

type UserRepo struct {
	*postgres.Postgres
}

func NewUserRepo(pg *postgres.Postgres) *UserRepo {
	return &UserRepo{pg}
}

func (r *UserRepo) Create(ctx context.Context, user *entity.UserCredential) error {
	sql, args, err := r.Builder.
		Insert(usersTable).
		Columns(
			userIDColumn,
			userUsernameColumn,
			userEmailColumn,
			userFullNameColumn,
			userRoleColumn,
			userCreatedAtColumn,
		).
		Values(
			user.ID,
			user.Username,
			user.Email,
			user.FullName,
			user.Role,
			user.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("UserRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("UserRepo - Create: %w", errs.ErrAlreadyExists)
		}

		return fmt.Errorf("UserRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.UserCredential, error) {
	sql, args, err := r.Builder.
		Select(
			userIDColumn,
			userUsernameColumn,
			userEmailColumn,
			userFullNameColumn,
			userRoleColumn,
			userCreatedAtColumn,
		).
		From(usersTable).
		Where(squirrel.Eq{userUsernameColumn: username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("UserRepo - GetByUsername - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var user entity.UserCredential
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("UserRepo - GetByUsername: %w", errs.ErrRecordNotFound)
		}

		return nil, fmt.Errorf("UserRepo - GetByUsername - executor.QueryRow: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) Delete(ctx context.Context, username string) error {
	sql, args, err := r.Builder.
		Delete(usersTable).
		Where(squirrel.Eq{userUsernameColumn: username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("UserRepo - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("UserRepo - Delete - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UserRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	return nil
}
