package amqp

import (
	"context"
	"encoding/json"

	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/internal/usecase"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// CompensationHandler слушает только основную очередь компенсаций.
// Ее DLQ существует для ручного разбора - автоматической логики на ней
// нет, иначе получили бы компенсацию компенсации.
type CompensationHandler struct {
	reg    usecase.RegistrationUseCase
	logger logger.Interface
}

func NewCompensationHandler(reg usecase.RegistrationUseCase, l logger.Interface) *CompensationHandler {
	return &CompensationHandler{
		reg:    reg,
		logger: l,
	}
}

func (h *CompensationHandler) Handle(ctx context.Context, d amqp.Delivery) Result {
	var event entity.CompensationEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		return Reject("undecodable compensation event", err)
	}

	h.logger.Info("saga compensation received for [%s], traceId [%s], reason: %s",
		event.Username, event.TraceID, event.Reason)

	// Сбой реверса не глотаем: requeue по политике основной очереди.
	// Неоткаченная регистрация - нарушение консистентности.
	err := h.reg.ReverseRegistration(ctx, event.Username, event.Reason)
	if err != nil {
		return Retry(err)
	}

	return Ok()
}
