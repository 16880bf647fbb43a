package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"qa-metrics/internal/config"
	"qa-metrics/internal/domain"
	"qa-metrics/internal/util"
)

var (
	serverRegions = []string{"us-east", "us-west", "eu-central", "ap-south"}
	clientRegions = []string{"in", "us", "de", "br", "jp", "za"}
	errorCodes    = []string{"E500", "E502", "E503", "E504", "TIMEOUT"}
)

type batchRequest struct {
	Logs []domain.RequestLog `json:"logs"`
}

func main() {

	cfg, err := config.LoadGenerator()
	if err != nil {
		log.Fatalf("Failed to load generator configuration: %v", err)
	}

	logger, err := util.NewConsoleLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: cfg.Timeout}
	target := strings.TrimRight(cfg.TargetURL, "/") + "/logs"

	endTime := time.Now().UTC()
	startTime := endTime.Add(-cfg.Window)

	logger.Info("Generating request logs",
		zap.String("target", target),
		zap.Int("count", cfg.Count),
		zap.Time("from", startTime),
		zap.Time("to", endTime),
	)

	sent := 0
	for sent < cfg.Count {
		size := min(cfg.BatchSize, cfg.Count-sent)

		batch := make([]domain.RequestLog, size)
		for i := range batch {
			batch[i] = randomLog(startTime, endTime)
		}

		if err := postBatch(ctx, client, target, batch); err != nil {
			logger.Error("Failed to post batch", zap.Int("sent", sent), zap.Error(err))
			os.Exit(1)
		}
		sent += size
		logger.Debug("Batch posted", zap.Int("size", size), zap.Int("sent", sent))
	}

	logger.Info("Data ingestion complete.", zap.Int("sent", sent))
}

// randomLog produces a record with a timestamp inside [start, end). Roughly one
// in five requests fails.
func randomLog(start, end time.Time) domain.RequestLog {
	ts := start.Add(time.Duration(rand.Int63n(int64(end.Sub(start)) + 1)))

	rec := domain.RequestLog{
		Status:       domain.NewText("success"),
		Region:       domain.NewText(pick(serverRegions)),
		Timestamp:    domain.NewText(ts.Format(time.RFC3339)),
		Latency:      domain.NewLatency(float64(20 + rand.Intn(480))),
		ClientRegion: domain.NewText(pick(clientRegions)),
	}

	if rand.Intn(5) == 0 {
		rec.Status = domain.NewText("failure")
		rec.ErrorCode = domain.NewText(pick(errorCodes))
		rec.Latency = domain.NewLatency(float64(500 + rand.Intn(2500)))
	}
	return rec
}

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}

func postBatch(ctx context.Context, client *http.Client, target string, logs []domain.RequestLog) error {
	body, err := json.Marshal(batchRequest{Logs: logs})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("post %s: status %d: %s", target, resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
