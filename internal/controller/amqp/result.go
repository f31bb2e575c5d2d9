package amqp

// Result - тегированный исход обработки доставки. Решение
// ack/requeue/dead-letter принимается в одной точке диспатча контроллера,
// хендлеры только классифицируют.
type ResultKind int

const (
	// Delivered - успех (в т.ч. идемпотентный no-op), сообщение подтверждается.
	Delivered ResultKind = iota
	// TransientError - временный сбой, сообщение вернется в очередь.
	TransientError
	// PermanentError - неразгребаемо, reject без requeue, брокер уведет в DLQ.
	PermanentError
)

type Result struct {
	Kind   ResultKind
	Reason string
	Err    error
}

func Ok() Result {
	return Result{Kind: Delivered}
}

func Retry(err error) Result {
	return Result{Kind: TransientError, Err: err}
}

func Reject(reason string, err error) Result {
	return Result{Kind: PermanentError, Reason: reason, Err: err}
}
