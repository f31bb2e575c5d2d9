package amqp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler классифицирует доставку, не трогая ack/nack.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) Result
}

// Controller - пул воркеров над одной очередью.
// Хендлеры разных сообщений выполняются параллельно, идемпотентность
// конкурентных доставок обеспечивает хранилище (unique constraint).
type Controller struct {
	name    string
	queue   string
	ch      *amqp.Channel
	handler Handler
	logger  logger.Interface

	processTimeout time.Duration
	prefetch       int
	workers        int

	consumerTag string
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	started atomic.Bool
}

func NewController(
	name string,
	queue string,
	ch *amqp.Channel,
	handler Handler,
	l logger.Interface,
	processTimeout time.Duration,
	prefetch int,
	workers int,
) *Controller {
	return &Controller{
		name:           name,
		queue:          queue,
		ch:             ch,
		handler:        handler,
		logger:         l,
		processTimeout: processTimeout,
		prefetch:       prefetch,
		workers:        workers,
	}
}

func (c *Controller) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Controller - Start - %s already started", c.name)
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	err := c.ch.Qos(c.prefetch, 0, false)
	if err != nil {
		return fmt.Errorf("Controller - Start - c.ch.Qos: %w", err)
	}

	c.consumerTag = c.name + "-consumer"

	deliveries, err := c.ch.Consume(
		c.queue,
		c.consumerTag,
		false, // auto-ack выключен: подтверждаем только после обработки
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("Controller - Start - c.ch.Consume: %w", err)
	}

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(deliveries)
	}

	return nil
}

func (c *Controller) worker(deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()

	// читаем канал, пока брокер его не закроет
	for d := range deliveries {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					c.logger.Error(fmt.Errorf("panic %v", rec), "Controller - worker - panic")
					// паника = временный сбой, сообщение вернется в очередь
					c.nack(d, true)
				}
			}()

			processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
			res := c.handler.Handle(processCtx, d)
			processCancel()

			c.dispatch(d, res)
		}()
	}
}

// dispatch - единственная точка, где исход превращается в ack/nack.
func (c *Controller) dispatch(d amqp.Delivery, res Result) {
	switch res.Kind {
	case Delivered:
		if err := d.Ack(false); err != nil {
			c.logger.Error(err, "Controller - dispatch - d.Ack")
		}
	case TransientError:
		c.logger.Warn("%s: transient failure, requeueing delivery %d: %v", c.name, d.DeliveryTag, res.Err)
		c.nack(d, true)
	case PermanentError:
		c.logger.Error(res.Err, fmt.Sprintf("%s - permanent failure, dead-lettering: %s", c.name, res.Reason))
		// requeue=false: брокер уведет сообщение в DLQ по x-dead-letter-exchange
		c.nack(d, false)
	}
}

func (c *Controller) nack(d amqp.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		c.logger.Error(err, "Controller - nack - d.Nack")
	}
}

func (c *Controller) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	// останавливаем поток доставок, воркеры дочитают канал и выйдут
	if err := c.ch.Cancel(c.consumerTag, false); err != nil {
		c.logger.Error(err, "Controller - Shutdown - c.ch.Cancel")
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		_ = c.ch.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
