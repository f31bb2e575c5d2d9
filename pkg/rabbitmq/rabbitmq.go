package rabbitmq

import (
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

type RabbitMQ struct {
	connAttempts int
	connTimeout  time.Duration

	url  string
	Conn *amqp.Connection
}

func New(url string, opts ...Option) (*RabbitMQ, error) {
	r := &RabbitMQ{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		url:          url,
	}

	for _, opt := range opts {
		opt(r)
	}

	var err error
	for r.connAttempts > 0 {
		r.Conn, err = amqp.Dial(r.url)
		if err == nil {
			break
		}

		log.Printf("RabbitMQ is trying to connect, attempts left: %d", r.connAttempts)

		time.Sleep(r.connTimeout)

		r.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("RabbitMQ - New - connAttempts == 0: %w", err)
	}

	return r, nil
}

// NewChannel - каналы amqp не рассчитаны на конкурентную публикацию,
// каждому компоненту выдается свой.
func (r *RabbitMQ) NewChannel() (*amqp.Channel, error) {
	ch, err := r.Conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ - NewChannel - r.Conn.Channel: %w", err)
	}

	return ch, nil
}

func (r *RabbitMQ) Close() error {
	if r.Conn != nil && !r.Conn.IsClosed() {
		return r.Conn.Close()
	}

	return nil
}
