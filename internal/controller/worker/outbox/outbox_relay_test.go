package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/Registration-Saga/internal/dto"
	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/stretchr/testify/require"
)

type regFake struct {
	pending    []*entity.OutboxMessage
	pendingErr error

	processed   []int64
	incremented []int64
}

func (f *regFake) RegisterUser(context.Context, dto.RegisterUser) (*entity.UserCredential, error) {
	return nil, nil
}

func (f *regFake) ReverseRegistration(context.Context, string, string) error { return nil }

func (f *regFake) GetPendingMessages(context.Context, int, int) ([]*entity.OutboxMessage, error) {
	return f.pending, f.pendingErr
}

func (f *regFake) MarkAsProcessed(_ context.Context, id int64) error {
	f.processed = append(f.processed, id)

	return nil
}

func (f *regFake) IncrementRetryCount(_ context.Context, id int64) error {
	f.incremented = append(f.incremented, id)

	return nil
}

func (f *regFake) GetPoisonedMessages(context.Context, int, int) ([]*entity.OutboxMessage, error) {
	return nil, nil
}

func (f *regFake) FlagPoisonedMessages(context.Context, int) error { return nil }

func (f *regFake) CleanupOutbox(context.Context, time.Duration) error { return nil }

type pubFake struct {
	published []entity.RegistrationEvent
	failFor   map[string]error
}

func (f *pubFake) PublishRegistration(_ context.Context, msg *entity.OutboxMessage, event entity.RegistrationEvent) error {
	if err := f.failFor[msg.AggregateID]; err != nil {
		return err
	}
	f.published = append(f.published, event)

	return nil
}

func (f *pubFake) PublishCompensation(context.Context, entity.CompensationEvent) error { return nil }

func (f *pubFake) Close() error { return nil }

func newTestRelay(reg *regFake, pub *pubFake) *OutboxRelay {
	return New(reg, pub, logger.NewNop(),
		time.Hour, time.Hour, time.Hour, // интервалы не важны: тик зовем напрямую
		24*time.Hour, time.Second, 100, 5)
}

func outboxMsg(t *testing.T, id int64, username string) *entity.OutboxMessage {
	t.Helper()

	event := entity.NewRegistrationEvent(username, username+"@example.com", "", "ROLE_USER", "trace-"+username)
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return &entity.OutboxMessage{
		ID:          id,
		AggregateID: username,
		Payload:     payload,
		TraceID:     event.TraceID,
		CreatedAt:   time.Now(),
	}
}

func TestRelayMessagesPublishesInCreationOrder(t *testing.T) {
	reg := &regFake{pending: []*entity.OutboxMessage{
		outboxMsg(t, 1, "alice"),
		outboxMsg(t, 2, "bob"),
	}}
	pub := &pubFake{}

	newTestRelay(reg, pub).relayMessages(context.Background())

	require.Equal(t, []int64{1, 2}, reg.processed)
	require.Empty(t, reg.incremented)
	require.Len(t, pub.published, 2)
	require.Equal(t, "alice", pub.published[0].Username)
	require.Equal(t, "bob", pub.published[1].Username)
}

func TestRelayMessagesPublishFailureKeepsRecordPending(t *testing.T) {
	reg := &regFake{pending: []*entity.OutboxMessage{
		outboxMsg(t, 1, "alice"),
		outboxMsg(t, 2, "bob"),
	}}
	pub := &pubFake{failFor: map[string]error{"alice": errors.New("broker unavailable")}}

	newTestRelay(reg, pub).relayMessages(context.Background())

	// упавшая запись копит ретраи и остается pending, остальные идут дальше
	require.Equal(t, []int64{1}, reg.incremented)
	require.Equal(t, []int64{2}, reg.processed)
	require.Len(t, pub.published, 1)
	require.Equal(t, "bob", pub.published[0].Username)
}

func TestRelayMessagesCorruptPayload(t *testing.T) {
	reg := &regFake{pending: []*entity.OutboxMessage{
		{ID: 7, AggregateID: "alice", Payload: []byte("{broken")},
	}}
	pub := &pubFake{}

	newTestRelay(reg, pub).relayMessages(context.Background())

	require.Equal(t, []int64{7}, reg.incremented)
	require.Empty(t, reg.processed)
	require.Empty(t, pub.published)
}

func TestRelayMessagesEmptyBatchIsNoOp(t *testing.T) {
	reg := &regFake{}
	pub := &pubFake{}

	newTestRelay(reg, pub).relayMessages(context.Background())

	require.Empty(t, reg.processed)
	require.Empty(t, reg.incremented)
	require.Empty(t, pub.published)
}

func TestStartTwiceFails(t *testing.T) {
	relay := newTestRelay(&regFake{}, &pubFake{})

	require.NoError(t, relay.Start(context.Background()))
	require.Error(t, relay.Start(context.Background()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, relay.Shutdown(shutdownCtx))
}
