package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

type EventsPublisher struct {
	ch *amqp.Channel
}

func NewEventsPublisher(ch *amqp.Channel) *EventsPublisher {
	return &EventsPublisher{ch: ch}
}

// PublishRegistration публикует payload outbox-записи как есть,
// перенося контекст трассировки в заголовки. X-B3-Sampled=1 заставляет
// консьюмера сохранить трейс, а не отсэмплировать его.
func (p *EventsPublisher) PublishRegistration(ctx context.Context, msg *entity.OutboxMessage, event entity.RegistrationEvent) error {
	headers := amqp.Table{}
	if msg.TraceID != "" {
		headers["X-B3-TraceId"] = msg.TraceID
		headers["X-B3-SpanId"] = msg.SpanID
		headers["X-B3-Sampled"] = "1"
	}

	err := p.ch.PublishWithContext(
		ctx,
		UserRegExchange,
		UserRegRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Headers:      headers,
			Body:         msg.Payload,
		},
	)
	if err != nil {
		return fmt.Errorf("EventsPublisher - PublishRegistration - p.ch.PublishWithContext: %w", err)
	}

	return nil
}

func (p *EventsPublisher) PublishCompensation(ctx context.Context, event entity.CompensationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("EventsPublisher - PublishCompensation - json.Marshal: %w", err)
	}

	headers := amqp.Table{}
	if event.TraceID != "" {
		headers["X-B3-TraceId"] = event.TraceID
		headers["X-B3-Sampled"] = "1"
	}

	err = p.ch.PublishWithContext(
		ctx,
		ProfileFailExchange,
		ProfileFailRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Headers:      headers,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("EventsPublisher - PublishCompensation - p.ch.PublishWithContext: %w", err)
	}

	return nil
}

func (p *EventsPublisher) Close() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch.Close()
	}

	return nil
}
