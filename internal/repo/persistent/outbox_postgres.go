package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/pkg/postgres"
	"github.com/andreyxaxa/Registration-Saga/pkg/types/errs"
)

const (
	// Table
	outboxTable = "outbox_messages"

	// Columns
	outboxIDColumn          = "id"
	outboxAggregateIDColumn = "aggregate_id"
	outboxPayloadColumn     = "payload"
	outboxTraceIDColumn     = "trace_id"
	outboxSpanIDColumn      = "span_id"
	outboxProcessedColumn   = "processed"
	outboxRetryCountColumn  = "retry_count"
	outboxCreatedAtColumn   = "created_at"
	outboxProcessedAtColumn = "processed_at"
)

type OutboxRepo struct {
	*postgres.Postgres
}

func NewOutboxRepo(pg *postgres.Postgres) *OutboxRepo {
	return &OutboxRepo{pg}
}

// Create вызывается только внутри транзакции доменной записи -
// executor берется из контекста.
func (r *OutboxRepo) Create(ctx context.Context, msg *entity.OutboxMessage) error {
	sql, args, err := r.Builder.
		Insert(outboxTable).
		Columns(
			outboxAggregateIDColumn,
			outboxPayloadColumn,
			outboxTraceIDColumn,
			outboxSpanIDColumn,
			outboxProcessedColumn,
			outboxRetryCountColumn,
			outboxCreatedAtColumn,
		).
		Values(
			msg.AggregateID,
			msg.Payload,
			msg.TraceID,
			msg.SpanID,
			msg.Processed,
			msg.RetryCount,
			msg.CreatedAt,
		).
		Suffix("RETURNING " + outboxIDColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	err = executor.QueryRow(ctx, sql, args...).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("OutboxRepo - Create - executor.QueryRow: %w", err)
	}

	return nil
}

func (r *OutboxRepo) GetPending(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxMessage, error) {
	sql, args, err := r.Builder.
		Select(
			outboxIDColumn,
			outboxAggregateIDColumn,
			outboxPayloadColumn,
			outboxTraceIDColumn,
			outboxSpanIDColumn,
			outboxProcessedColumn,
			outboxRetryCountColumn,
			outboxCreatedAtColumn,
			outboxProcessedAtColumn,
		).
		From(outboxTable).
		Where(squirrel.And{
			squirrel.Eq{outboxProcessedColumn: false},
			squirrel.Lt{outboxRetryCountColumn: maxRetries},
		}).
		OrderBy(outboxIDColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("OutboxRepo - GetPending - r.Builder.ToSql: %w", err)
	}

	return r.queryMessages(ctx, sql, args, limit, "GetPending")
}

// GetPoisoned - записи, исчерпавшие ретраи; из опроса они исключены
// и ждут ручного разбора.
func (r *OutboxRepo) GetPoisoned(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxMessage, error) {
	sql, args, err := r.Builder.
		Select(
			outboxIDColumn,
			outboxAggregateIDColumn,
			outboxPayloadColumn,
			outboxTraceIDColumn,
			outboxSpanIDColumn,
			outboxProcessedColumn,
			outboxRetryCountColumn,
			outboxCreatedAtColumn,
			outboxProcessedAtColumn,
		).
		From(outboxTable).
		Where(squirrel.And{
			squirrel.Eq{outboxProcessedColumn: false},
			squirrel.GtOrEq{outboxRetryCountColumn: maxRetries},
		}).
		OrderBy(outboxIDColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("OutboxRepo - GetPoisoned - r.Builder.ToSql: %w", err)
	}

	return r.queryMessages(ctx, sql, args, limit, "GetPoisoned")
}

func (r *OutboxRepo) MarkProcessed(ctx context.Context, id int64) error {
	now := time.Now()

	sql, args, err := r.Builder.
		Update(outboxTable).
		Set(outboxProcessedColumn, true).
		Set(outboxProcessedAtColumn, now).
		Where(squirrel.Eq{outboxIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - MarkProcessed - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - MarkProcessed - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("OutboxRepo - MarkProcessed: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *OutboxRepo) IncrementRetryCount(ctx context.Context, id int64) error {
	sql, args, err := r.Builder.
		Update(outboxTable).
		Set(outboxRetryCountColumn, squirrel.Expr(outboxRetryCountColumn+" + 1")).
		Where(squirrel.Eq{outboxIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - IncrementRetryCount - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - IncrementRetryCount - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("OutboxRepo - IncrementRetryCount: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *OutboxRepo) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := r.Builder.
		Delete(outboxTable).
		Where(squirrel.And{
			squirrel.Eq{outboxProcessedColumn: true},
			squirrel.Lt{outboxProcessedAtColumn: cutoff},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("OutboxRepo - DeleteProcessedBefore - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("OutboxRepo - DeleteProcessedBefore - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *OutboxRepo) queryMessages(ctx context.Context, sql string, args []interface{}, limit int, op string) ([]*entity.OutboxMessage, error) {
	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("OutboxRepo - %s - executor.Query: %w", op, err)
	}
	defer rows.Close()

	msgs := make([]*entity.OutboxMessage, 0, limit)
	for rows.Next() {
		var msg entity.OutboxMessage
		err = rows.Scan(
			&msg.ID,
			&msg.AggregateID,
			&msg.Payload,
			&msg.TraceID,
			&msg.SpanID,
			&msg.Processed,
			&msg.RetryCount,
			&msg.CreatedAt,
			&msg.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("OutboxRepo - %s - rows.Scan: %w", op, err)
		}
		msgs = append(msgs, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("OutboxRepo - %s - rows.Err: %w", op, err)
	}

	return msgs, nil
}
