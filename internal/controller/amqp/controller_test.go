package amqp

import (
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.acked = true

	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue

	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue

	return nil
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name        string
		res         Result
		wantAck     bool
		wantNack    bool
		wantRequeue bool
	}{
		{
			name:    "delivered is acked",
			res:     Ok(),
			wantAck: true,
		},
		{
			name:        "transient error is requeued",
			res:         Retry(errors.New("timeout")),
			wantNack:    true,
			wantRequeue: true,
		},
		{
			name:        "permanent error is dead-lettered",
			res:         Reject("projection failed", errors.New("non-retriable")),
			wantNack:    true,
			wantRequeue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController("test", "test-queue", nil, nil, logger.NewNop(), time.Second, 1, 1)

			ack := &ackRecorder{}
			c.dispatch(amqp.Delivery{Acknowledger: ack, DeliveryTag: 42}, tt.res)

			require.Equal(t, tt.wantAck, ack.acked)
			require.Equal(t, tt.wantNack, ack.nacked)
			require.Equal(t, tt.wantRequeue, ack.requeue)
		})
	}
}
