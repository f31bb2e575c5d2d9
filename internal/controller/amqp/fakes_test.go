package amqp_test

import (
	"context"
	"time"

	"github.com/andreyxaxa/Registration-Saga/internal/dto"
	"github.com/andreyxaxa/Registration-Saga/internal/entity"
)

type profileFake struct {
	err    error
	calls  int
	events []entity.RegistrationEvent
}

func (f *profileFake) CreateFromEvent(_ context.Context, event entity.RegistrationEvent) error {
	f.calls++
	f.events = append(f.events, event)

	return f.err
}

type publisherFake struct {
	compensations []entity.CompensationEvent
	compErr       error
}

func (f *publisherFake) PublishRegistration(context.Context, *entity.OutboxMessage, entity.RegistrationEvent) error {
	return nil
}

func (f *publisherFake) PublishCompensation(_ context.Context, event entity.CompensationEvent) error {
	if f.compErr != nil {
		return f.compErr
	}
	f.compensations = append(f.compensations, event)

	return nil
}

func (f *publisherFake) Close() error { return nil }

type reversal struct {
	username string
	reason   string
}

type registrationFake struct {
	reversals  []reversal
	reverseErr error
}

func (f *registrationFake) RegisterUser(context.Context, dto.RegisterUser) (*entity.UserCredential, error) {
	return nil, nil
}

func (f *registrationFake) ReverseRegistration(_ context.Context, username, reason string) error {
	if f.reverseErr != nil {
		return f.reverseErr
	}
	f.reversals = append(f.reversals, reversal{username: username, reason: reason})

	return nil
}

func (f *registrationFake) GetPendingMessages(context.Context, int, int) ([]*entity.OutboxMessage, error) {
	return nil, nil
}

func (f *registrationFake) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *registrationFake) IncrementRetryCount(context.Context, int64) error { return nil }

func (f *registrationFake) GetPoisonedMessages(context.Context, int, int) ([]*entity.OutboxMessage, error) {
	return nil, nil
}

func (f *registrationFake) FlagPoisonedMessages(context.Context, int) error { return nil }

func (f *registrationFake) CleanupOutbox(context.Context, time.Duration) error { return nil }
