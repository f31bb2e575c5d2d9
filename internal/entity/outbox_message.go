package entity

import (
	"time"
)

// OutboxMessage - строка transactional outbox.
// Создается только в одной транзакции с доменной записью,
// мутируется только релеером, удаляется только ретеншн-очисткой.
type OutboxMessage struct {
	ID          int64      `json:"id"` // BIGSERIAL, монотонный, присваивается при вставке
	AggregateID string     `json:"aggregate_id"`
	Payload     []byte     `json:"payload"`
	TraceID     string     `json:"trace_id"`
	SpanID      string     `json:"span_id"`
	Processed   bool       `json:"processed"`
	RetryCount  int        `json:"retry_count"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
