package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/internal/infrastructure"
	"github.com/andreyxaxa/Registration-Saga/internal/usecase"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/andreyxaxa/Registration-Saga/pkg/types/errs"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RegistrationHandler - прямой консьюмер саги: идемпотентная проекция
// события регистрации в profile-хранилище.
type RegistrationHandler struct {
	profile usecase.ProfileUseCase
	pub     infrastructure.EventsPublisher
	logger  logger.Interface
}

func NewRegistrationHandler(
	profile usecase.ProfileUseCase,
	pub infrastructure.EventsPublisher,
	l logger.Interface,
) *RegistrationHandler {
	return &RegistrationHandler{
		profile: profile,
		pub:     pub,
		logger:  l,
	}
}

func (h *RegistrationHandler) Handle(ctx context.Context, d amqp.Delivery) Result {
	// 1. контекст трассировки - только для наблюдаемости
	traceID := headerString(d.Headers, "X-B3-TraceId")

	// 2. конверт события
	var event entity.RegistrationEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// без валидного конверта нет aggregateId - компенсировать нечего,
		// улики остаются в DLQ
		return Reject("undecodable registration event", err)
	}

	if traceID == "" {
		traceID = event.TraceID
	}

	h.logger.Info("mq receive: processing registration for [%s], traceId [%s]", event.Username, traceID)

	// 3. идемпотентная проекция
	err := h.profile.CreateFromEvent(ctx, event)
	if err == nil {
		return Ok()
	}

	// 4. классификация обязана быть явной: только бизнес-провал
	// уводит сообщение в DLQ, остальное - requeue
	if !errors.Is(err, errs.ErrNonRetriable) {
		return Retry(err)
	}

	// 5. компенсация публикуется ДО reject исходного сообщения:
	// упади мы между этими шагами в другом порядке - триггер компенсации
	// потерян и агрегат навсегда рассогласован
	comp := entity.NewCompensationEvent(event.Username, err.Error(), traceID)
	if pubErr := h.pub.PublishCompensation(ctx, comp); pubErr != nil {
		h.logger.Error(pubErr, "RegistrationHandler - Handle - h.pub.PublishCompensation")

		// компенсация не легла в брокер - исходное сообщение отпускать нельзя
		return Retry(pubErr)
	}

	return Reject(fmt.Sprintf("projection failed for [%s], compensation published", event.Username), err)
}

func headerString(headers amqp.Table, key string) string {
	if headers == nil {
		return ""
	}
	if v, ok := headers[key].(string); ok {
		return v
	}

	return ""
}
