package response

type Register struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type OutboxMessage struct {
	ID          int64  `json:"id"`
	AggregateID string `json:"aggregate_id"`
	TraceID     string `json:"trace_id"`
	RetryCount  int    `json:"retry_count"`
	CreatedAt   string `json:"created_at"`
}

type Error struct {
	Error string `json:"error"`
}
