package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"qa-metrics/internal/config"
	"qa-metrics/internal/eventstore"
	"qa-metrics/internal/forward"
	"qa-metrics/internal/ingest"
	"qa-metrics/internal/repository"
	"qa-metrics/internal/router"
	"qa-metrics/internal/telemetry"
	"qa-metrics/internal/util"
)

func LoggerInitialize(cfg config.LogConfig) (*util.ServiceLogger, error) {

	logger := &util.ServiceLogger{}

	if err := logger.Init(util.LoggerOptions{
		Dir:      cfg.Dir,
		FileName: cfg.FileName,
		Level:    cfg.Level,
		Console:  cfg.Console,
	}); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		return nil, err
	}

	logger.Info("Service started")

	currentTime := time.Now().Format(time.RFC3339)

	fmt.Fprintf(os.Stderr, "\n%s: QA Metrics service started \n", currentTime)

	return logger, nil
}

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := LoggerInitialize(cfg.Log)
	if err != nil {
		fmt.Println("Error while initializing the logger..", err)
		return
	}
	defer logger.DeInit()

	events := eventstore.NewMemoryStore()

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.New(events.Len)
	}

	params := ingest.Params{
		Store:   events,
		Logger:  logger,
		Metrics: metrics,
	}
	if cfg.Kafka.Enabled() {
		forwarder := forward.NewKafkaForwarder(forward.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Completion: func(messages []kafkago.Message, err error) {
				if err != nil {
					logger.Error("Kafka write failed", zap.Int("messages", len(messages)), zap.Error(err))
				}
			},
		})
		defer forwarder.Close()

		params.Forwarder = forwarder
		logger.Info("Forwarding request logs to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	util.CheckAndCreateLogFolder(filepath.Dir(cfg.Storage.QADBPath))

	qaStore := repository.NewSQLiteStore(cfg.Storage.QADBPath)
	if err := qaStore.Init(); err != nil {
		logger.Error("Failed to initialize Q&A store", zap.String("path", cfg.Storage.QADBPath), zap.Error(err))
		logger.DeInit()
		log.Fatalf("Failed to initialize Q&A store: %v", err)
	}
	defer qaStore.Close()

	err = router.Run(cfg, router.Dependencies{
		Events:       events,
		Gateway:      ingest.NewGateway(params),
		QA:           qaStore,
		Metrics:      metrics,
		Logger:       logger,
		Region:       cfg.App.Region,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})
	if err != nil {
		logger.Error("Service exited with error", zap.Error(err))
	}
}
