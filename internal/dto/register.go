package dto

type RegisterUser struct {
	Username string
	Email    string
	FullName string
	Role     string

	// Контекст трассировки вызывающей стороны; может быть пустым.
	TraceID string
	SpanID  string
}
