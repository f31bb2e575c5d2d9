package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrAlreadyExists  = errors.New("record already exists")

	// ErrNonRetriable помечает бизнес-ошибки, по которым повтор не сходится.
	ErrNonRetriable = errors.New("non-retriable failure")
)
