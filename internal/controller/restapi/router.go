package restapi

import (
	"github.com/andreyxaxa/Registration-Saga/config"
	v1 "github.com/andreyxaxa/Registration-Saga/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Registration-Saga/internal/usecase"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// @title Registration Saga
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(app *fiber.App, cfg *config.Config, reg usecase.RegistrationUseCase, l logger.Interface) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewAuthRoutes(apiV1Group, cfg, reg, l)
	}
}
