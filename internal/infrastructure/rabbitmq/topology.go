package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeclareTopology объявляет обе цепочки exchange/queue/binding + DLX/DLQ.
// Декларации идемпотентны, вызывается один раз на старте процесса.
// Решение "сообщение неразгребаемо" принимает консьюмер (reject без requeue),
// а маршрут в DLQ - брокер, через x-dead-letter-* аргументы основной очереди.
func DeclareTopology(ch *amqp.Channel) error {
	flows := []struct {
		exchange     string
		queue        string
		routingKey   string
		dlx          string
		dlq          string
		dlRoutingKey string
	}{
		{UserRegExchange, UserRegQueue, UserRegRoutingKey, UserRegDLX, UserRegDLQ, UserRegDLRoutingKey},
		{ProfileFailExchange, ProfileFailQueue, ProfileFailRoutingKey, ProfileFailDLX, ProfileFailDLQ, ProfileFailDLRoutingKey},
	}

	for _, f := range flows {
		err := declareFlow(ch, f.exchange, f.queue, f.routingKey, f.dlx, f.dlq, f.dlRoutingKey)
		if err != nil {
			return fmt.Errorf("rabbitmq - DeclareTopology - declareFlow(%s): %w", f.exchange, err)
		}
	}

	return nil
}

func declareFlow(ch *amqp.Channel, exchange, queue, routingKey, dlx, dlq, dlRoutingKey string) error {
	// 1. exchange живого трафика
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeDirect,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("ch.ExchangeDeclare: %w", err)
	}

	// 2. dead-letter exchange
	err = ch.ExchangeDeclare(
		dlx,
		amqp.ExchangeDirect,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("ch.ExchangeDeclare dlx: %w", err)
	}

	// 3. основная очередь, reject без requeue уводит сообщение в DLX
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		amqp.Table{
			"x-dead-letter-exchange":    dlx,
			"x-dead-letter-routing-key": dlRoutingKey,
		},
	)
	if err != nil {
		return fmt.Errorf("ch.QueueDeclare: %w", err)
	}

	// 4. dead-letter очередь, только для ручного разбора
	_, err = ch.QueueDeclare(
		dlq,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("ch.QueueDeclare dlq: %w", err)
	}

	// 5. биндинги
	err = ch.QueueBind(queue, routingKey, exchange, false, nil)
	if err != nil {
		return fmt.Errorf("ch.QueueBind: %w", err)
	}

	err = ch.QueueBind(dlq, dlRoutingKey, dlx, false, nil)
	if err != nil {
		return fmt.Errorf("ch.QueueBind dlq: %w", err)
	}

	return nil
}
