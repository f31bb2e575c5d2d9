package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/andreyxaxa/Registration-Saga/config"
	amqpctrl "github.com/andreyxaxa/Registration-Saga/internal/controller/amqp"
	"github.com/andreyxaxa/Registration-Saga/internal/controller/restapi"
	"github.com/andreyxaxa/Registration-Saga/internal/controller/worker/outbox"
	infrarmq "github.com/andreyxaxa/Registration-Saga/internal/infrastructure/rabbitmq"
	"github.com/andreyxaxa/Registration-Saga/internal/repo/persistent"
	"github.com/andreyxaxa/Registration-Saga/internal/usecase/profile"
	"github.com/andreyxaxa/Registration-Saga/internal/usecase/registration"
	"github.com/andreyxaxa/Registration-Saga/pkg/httpserver"
	"github.com/andreyxaxa/Registration-Saga/pkg/logger"
	"github.com/andreyxaxa/Registration-Saga/pkg/postgres"
	"github.com/andreyxaxa/Registration-Saga/pkg/rabbitmq"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// identity store
	identityPG, err := postgres.New(cfg.IdentityPG.URL, postgres.MaxPoolSize(cfg.IdentityPG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New identity: %w", err))
	}
	defer identityPG.Close()

	// portfolio store
	portfolioPG, err := postgres.New(cfg.PortfolioPG.URL, postgres.MaxPoolSize(cfg.PortfolioPG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New portfolio: %w", err))
	}
	defer portfolioPG.Close()

	// RabbitMQ
	rmq, err := rabbitmq.New(cfg.RMQ.URL)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - rabbitmq.New: %w", err))
	}
	defer rmq.Close()

	// топология объявляется один раз на старте
	topologyCh, err := rmq.NewChannel()
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - rmq.NewChannel: %w", err))
	}
	if err = infrarmq.DeclareTopology(topologyCh); err != nil {
		l.Fatal(fmt.Errorf("app - Run - infrarmq.DeclareTopology: %w", err))
	}
	_ = topologyCh.Close()

	// Use-Case
	registrationUseCase := registration.New(
		persistent.NewUserRepo(identityPG),
		persistent.NewOutboxRepo(identityPG),
		identityPG,
		l,
	)

	profileUseCase := profile.New(persistent.NewProfileRepo(portfolioPG), l)

	// Publishers: у релеера и у прямого консьюмера свои каналы
	relayCh, err := rmq.NewChannel()
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - rmq.NewChannel relay: %w", err))
	}

	compensationCh, err := rmq.NewChannel()
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - rmq.NewChannel compensation: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		registrationUseCase,
		infrarmq.NewEventsPublisher(relayCh),
		l,
		cfg.OutboxRelay.PollInterval,
		cfg.OutboxRelay.PoisonFlagInterval,
		cfg.OutboxRelay.CleanupInterval,
		cfg.OutboxRelay.Retention,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
	)

	// Forward Consumer: проекция регистраций в portfolio store
	regConsumerCh, err := rmq.NewChannel()
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - rmq.NewChannel reg consumer: %w", err))
	}

	registrationController := amqpctrl.NewController(
		"registration",
		infrarmq.UserRegQueue,
		regConsumerCh,
		amqpctrl.NewRegistrationHandler(profileUseCase, infrarmq.NewEventsPublisher(compensationCh), l),
		l,
		cfg.Consumer.ProcessTimeout,
		cfg.Consumer.Prefetch,
		runtime.NumCPU(),
	)

	// Compensation Consumer: откат регистрации в identity store
	compConsumerCh, err := rmq.NewChannel()
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - rmq.NewChannel comp consumer: %w", err))
	}

	compensationController := amqpctrl.NewController(
		"compensation",
		infrarmq.ProfileFailQueue,
		compConsumerCh,
		amqpctrl.NewCompensationHandler(registrationUseCase, l),
		l,
		cfg.Consumer.ProcessTimeout,
		cfg.Consumer.Prefetch,
		runtime.NumCPU(),
	)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, registrationUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = registrationController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - registrationController.Start: %w", err))
	}
	err = compensationController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - compensationController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}

	regShutdownCtx, regShutdownCancel := context.WithTimeout(ctx, cfg.Consumer.ShutdownTimeout)
	defer regShutdownCancel()
	err = registrationController.Shutdown(regShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - registrationController.Shutdown: %w", err))
	}

	compShutdownCtx, compShutdownCancel := context.WithTimeout(ctx, cfg.Consumer.ShutdownTimeout)
	defer compShutdownCancel()
	err = compensationController.Shutdown(compShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - compensationController.Shutdown: %w", err))
	}
}
