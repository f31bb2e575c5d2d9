package amqp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqpctrl "github.com/andreyxaxa/Registration-Saga/internal/controller/amqp"
	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

func compensationDelivery(t *testing.T, event entity.CompensationEvent) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(event)
	require.NoError(t, err)

	return amqp.Delivery{Body: body}
}

func TestCompensationHandlerReversesRegistration(t *testing.T) {
	reg := &registrationFake{}
	h := amqpctrl.NewCompensationHandler(reg, logger.NewNop())

	event := entity.NewCompensationEvent("alice", "projection failed", "trace-1")
	res := h.Handle(context.Background(), compensationDelivery(t, event))

	require.Equal(t, amqpctrl.Delivered, res.Kind)
	require.Len(t, reg.reversals, 1)
	require.Equal(t, "alice", reg.reversals[0].username)
	require.Equal(t, "projection failed", reg.reversals[0].reason)
}

func TestCompensationHandlerReversalFailureRequeues(t *testing.T) {
	reg := &registrationFake{reverseErr: errors.New("identity store down")}
	h := amqpctrl.NewCompensationHandler(reg, logger.NewNop())

	event := entity.NewCompensationEvent("alice", "projection failed", "trace-1")
	res := h.Handle(context.Background(), compensationDelivery(t, event))

	require.Equal(t, amqpctrl.TransientError, res.Kind)
}

func TestCompensationHandlerUndecodableBody(t *testing.T) {
	reg := &registrationFake{}
	h := amqpctrl.NewCompensationHandler(reg, logger.NewNop())

	res := h.Handle(context.Background(), amqp.Delivery{Body: []byte("??")})

	require.Equal(t, amqpctrl.PermanentError, res.Kind)
	require.Empty(t, reg.reversals)
}
