package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Registration-Saga/internal/entity"
	"github.com/andreyxaxa/Registration-Saga/internal/infrastructure"
	"github.com/andreyxaxa/Registration-Saga/internal/usecase"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
)

type OutboxRelay struct {
	reg    usecase.RegistrationUseCase
	pub    infrastructure.EventsPublisher
	logger logger.Interface

	pollInterval        time.Duration
	poisonFlagInterval  time.Duration
	cleanupInterval     time.Duration
	retention           time.Duration
	processBatchTimeout time.Duration
	batchSize           int
	maxRetries          int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	reg usecase.RegistrationUseCase,
	pub infrastructure.EventsPublisher,
	l logger.Interface,
	pollInterval time.Duration,
	poisonFlagInterval time.Duration,
	cleanupInterval time.Duration,
	retention time.Duration,
	processBatchTimeout time.Duration,
	batchSize int,
	maxRetries int,
) *OutboxRelay {
	return &OutboxRelay{
		reg:                 reg,
		pub:                 pub,
		logger:              l,
		pollInterval:        pollInterval,
		poisonFlagInterval:  poisonFlagInterval,
		cleanupInterval:     cleanupInterval,
		retention:           retention,
		processBatchTimeout: processBatchTimeout,
		batchSize:           batchSize,
		maxRetries:          maxRetries,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// 1. воркер ретрансляции outbox -> брокер.
	// Тики одного воркера выполняются последовательно - два тика
	// не могут обрабатывать одни и те же записи.
	r.worker(r.pollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.processBatchTimeout)
		r.relayMessages(batchCtx)
		batchCancel()
	})

	// 2. воркер сигнализации о poison-записях
	r.worker(r.poisonFlagInterval, func() {
		err := r.reg.FlagPoisonedMessages(r.ctx, r.maxRetries)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.reg.FlagPoisonedMessages")
		}
	})

	// 3. воркер ретеншн-очистки processed-записей
	r.worker(r.cleanupInterval, func() {
		err := r.reg.CleanupOutbox(r.ctx, r.retention)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.reg.CleanupOutbox")
		}
	})

	return nil
}

// relayMessages - один тик релеера. Записи публикуются в порядке создания;
// частично успешный батч не откатывается: опубликованное уже помечено
// processed, упавшее останется pending до следующего тика. Отсюда
// требование идемпотентности консьюмеров - падение между публикацией и
// пометкой даст повторную доставку.
func (r *OutboxRelay) relayMessages(ctx context.Context) {
	// 1. pending-записи, у которых retry count < max retries
	msgs, err := r.reg.GetPendingMessages(ctx, r.maxRetries, r.batchSize)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - relayMessages - r.reg.GetPendingMessages")

		return
	}
	if len(msgs) == 0 {
		return
	}

	for _, msg := range msgs {
		// 2. payload обратно в конверт события
		var event entity.RegistrationEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			// битый payload публикацией не вылечить - копим ретраи,
			// пока запись не станет poison
			r.logger.Error(err, "OutboxRelay - relayMessages - json.Unmarshal")
			r.incrementRetryCount(ctx, msg.ID)

			continue
		}

		// 3. публикация с заголовками трассировки
		if err := r.pub.PublishRegistration(ctx, msg, event); err != nil {
			r.logger.Error(err, "OutboxRelay - relayMessages - r.pub.PublishRegistration")
			r.incrementRetryCount(ctx, msg.ID)

			continue
		}

		// 4. после подтверждения публикации - processed
		if err := r.reg.MarkAsProcessed(ctx, msg.ID); err != nil {
			r.logger.Error(err, "OutboxRelay - relayMessages - r.reg.MarkAsProcessed")

			continue
		}

		r.logger.Info("outbox: relayed message id=%d aggregate=%s", msg.ID, msg.AggregateID)
	}
}

func (r *OutboxRelay) incrementRetryCount(ctx context.Context, id int64) {
	err := r.reg.IncrementRetryCount(ctx, id)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - incrementRetryCount - r.reg.IncrementRetryCount")
	}
}

func (r *OutboxRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		r.pub.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
