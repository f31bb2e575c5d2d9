package v1

import (
	"github.com/andreyxaxa/Registration-Saga/config"
	"github.com/andreyxaxa/Registration-Saga/internal/usecase"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewAuthRoutes(apiV1Group fiber.Router, cfg *config.Config, reg usecase.RegistrationUseCase, l logger.Interface) {
	r := &V1{reg: reg, logger: l, maxRetries: cfg.OutboxRelay.MaxRetries}

	{
		// API
		apiV1Group.Post("/auth/register", r.register)

		// операторская поверхность
		apiV1Group.Get("/outbox/poisoned", r.poisonedOutbox)
	}
}
