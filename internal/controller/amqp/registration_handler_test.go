package amqp_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	amqpctrl "github.com/andreyxaxa/Registration-Saga/internal/controller/amqp"
	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/andreyxaxa/Registration-Saga/pkg/types/errs"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

func registrationDelivery(t *testing.T, event entity.RegistrationEvent, headers amqp.Table) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(event)
	require.NoError(t, err)

	return amqp.Delivery{Body: body, Headers: headers}
}

func TestRegistrationHandlerDelivered(t *testing.T) {
	profile := &profileFake{}
	pub := &publisherFake{}
	h := amqpctrl.NewRegistrationHandler(profile, pub, logger.NewNop())

	event := entity.NewRegistrationEvent("alice", "alice@example.com", "Alice A", "ROLE_USER", "trace-1")
	res := h.Handle(context.Background(), registrationDelivery(t, event, nil))

	require.Equal(t, amqpctrl.Delivered, res.Kind)
	require.Equal(t, 1, profile.calls)
	require.Equal(t, "alice", profile.events[0].Username)
	require.Empty(t, pub.compensations)
}

func TestRegistrationHandlerTransientFailure(t *testing.T) {
	profile := &profileFake{err: errors.New("connection refused")}
	pub := &publisherFake{}
	h := amqpctrl.NewRegistrationHandler(profile, pub, logger.NewNop())

	event := entity.NewRegistrationEvent("alice", "alice@example.com", "", "ROLE_USER", "trace-1")
	res := h.Handle(context.Background(), registrationDelivery(t, event, nil))

	// временный сбой - requeue, компенсация не публикуется
	require.Equal(t, amqpctrl.TransientError, res.Kind)
	require.Empty(t, pub.compensations)
}

func TestRegistrationHandlerPermanentFailurePublishesCompensation(t *testing.T) {
	profile := &profileFake{err: fmt.Errorf("projection rejected: %w", errs.ErrNonRetriable)}
	pub := &publisherFake{}
	h := amqpctrl.NewRegistrationHandler(profile, pub, logger.NewNop())

	event := entity.NewRegistrationEvent("fail_test", "fail@example.com", "", "ROLE_USER", "trace-evt")
	headers := amqp.Table{"X-B3-TraceId": "trace-hdr"}
	res := h.Handle(context.Background(), registrationDelivery(t, event, headers))

	require.Equal(t, amqpctrl.PermanentError, res.Kind)
	require.Len(t, pub.compensations, 1)

	comp := pub.compensations[0]
	require.Equal(t, "fail_test", comp.Username)
	require.Equal(t, "trace-hdr", comp.TraceID, "traceId берется из заголовков доставки")
	require.NotEmpty(t, comp.Reason)
}

func TestRegistrationHandlerTraceIDFallsBackToEvent(t *testing.T) {
	profile := &profileFake{err: fmt.Errorf("projection rejected: %w", errs.ErrNonRetriable)}
	pub := &publisherFake{}
	h := amqpctrl.NewRegistrationHandler(profile, pub, logger.NewNop())

	event := entity.NewRegistrationEvent("fail_test", "fail@example.com", "", "ROLE_USER", "trace-evt")
	res := h.Handle(context.Background(), registrationDelivery(t, event, nil))

	require.Equal(t, amqpctrl.PermanentError, res.Kind)
	require.Len(t, pub.compensations, 1)
	require.Equal(t, "trace-evt", pub.compensations[0].TraceID)
}

func TestRegistrationHandlerCompensationPublishFailure(t *testing.T) {
	profile := &profileFake{err: fmt.Errorf("projection rejected: %w", errs.ErrNonRetriable)}
	pub := &publisherFake{compErr: errors.New("broker unavailable")}
	h := amqpctrl.NewRegistrationHandler(profile, pub, logger.NewNop())

	event := entity.NewRegistrationEvent("fail_test", "fail@example.com", "", "ROLE_USER", "trace-1")
	res := h.Handle(context.Background(), registrationDelivery(t, event, nil))

	// компенсация не легла в брокер - исходное сообщение нельзя dead-letter'ить
	require.Equal(t, amqpctrl.TransientError, res.Kind)
}

func TestRegistrationHandlerUndecodableBody(t *testing.T) {
	profile := &profileFake{}
	pub := &publisherFake{}
	h := amqpctrl.NewRegistrationHandler(profile, pub, logger.NewNop())

	res := h.Handle(context.Background(), amqp.Delivery{Body: []byte("not json")})

	require.Equal(t, amqpctrl.PermanentError, res.Kind)
	require.Zero(t, profile.calls)
	require.Empty(t, pub.compensations, "без валидного конверта компенсировать нечего")
}
