package infrastructure

import (
	"context"

	"github.com/andreyxaxa/Registration-Saga/internal/entity"
)

type (
	EventsPublisher interface {
		PublishRegistration(ctx context.Context, msg *entity.OutboxMessage, event entity.RegistrationEvent) error
		PublishCompensation(ctx context.Context, event entity.CompensationEvent) error
		Close() error
	}
)
