package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafehub/config"
	"cafehub/internal/api"
	"cafehub/internal/auth"
	"cafehub/internal/broker"
	"cafehub/internal/catalog"
	"cafehub/internal/localstore"
	"cafehub/internal/service"
	"cafehub/internal/session"
	"cafehub/internal/util"
	"cafehub/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Observ.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting cafehub")

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer(util.TracerConfig{
			Endpoint:    cfg.Observ.JaegerEndpoint,
			Environment: cfg.Server.Env,
			SampleRatio: cfg.Observ.TracingSampleRatio,
		})
		if err != nil {
			log.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
	}

	ctx := context.Background()

	cafes, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	storage, closer, err := localstore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer closer.Close()
	log.Printf("Local storage ready: backend=%s", cfg.Storage.Backend)

	ledger, ok := storage.(worker.Ledger)
	if !ok {
		ledger = worker.NewMemoryLedger()
	}

	var history *worker.HistoryWorker
	var sink broker.Sink
	var consumer *broker.Consumer
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		sink = producer
		consumer = broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		log.Println("Kafka producer initialized")
	} else {
		sink = broker.NewLocalBus(func(ctx context.Context, msg kafka.Message) error {
			return history.EventHandler().HandleMessage(ctx, msg)
		})
		log.Println("Kafka disabled, dispatching events in process")
	}
	eventPublisher := broker.NewEventPublisher(sink)

	registry := session.NewRegistry(session.Options{
		Backend:          storage,
		AuthService:      auth.NewMockService(cfg.Auth.Delay),
		SeedDemoUser:     cfg.Auth.DemoUser,
		ServiceFeeRate:   cfg.Business.ServiceFeeRate,
		TrackingInterval: cfg.Business.TrackingInterval,
		OnStatusChange:   service.StatusHook(eventPublisher),
	})
	defer registry.Close()

	history = worker.NewHistoryWorker(consumer, registry, ledger)

	gateway := service.NewMockGateway(cfg.Business.PaymentDelay)
	reservationService := service.NewReservationService(cafes, gateway, eventPublisher, cfg.Business.ReservationCodePrefix)
	orderingService := service.NewOrderingService(cafes, gateway, eventPublisher, cfg.Business.VATRate)
	accountService := service.NewAccountService(cafes)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	go func() {
		if err := history.Start(workerCtx); err != nil {
			log.Printf("History worker error: %v", err)
		}
	}()

	janitor := worker.NewSessionJanitor(registry, cfg.Auth.SessionTTL, time.Minute)
	go janitor.Start(workerCtx)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Options{
		Catalog:      cafes,
		Registry:     registry,
		Tokens:       auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
		Reservations: reservationService,
		Ordering:     orderingService,
		Accounts:     accountService,
		QR:           service.NewQRGenerator(cafes),
		CORSOrigins:  cfg.Server.CORSOrigins,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	history.Stop()

	log.Println("Server exited")
}
