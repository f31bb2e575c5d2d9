package v1

import (
	"github.com/andreyxaxa/Registration-Saga/internal/usecase"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
)

type V1 struct {
	reg    usecase.RegistrationUseCase
	logger logger.Interface

	maxRetries int
}
