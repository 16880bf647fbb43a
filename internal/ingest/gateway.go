package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"qa-metrics/internal/domain"
	"qa-metrics/internal/telemetry"
	"qa-metrics/internal/util"
)

// ErrInvalidInput rejects a batch whose logs field is not a JSON array.
var ErrInvalidInput = errors.New("invalid request: 'logs' should be an array")

// Forwarder receives every appended batch. Errors are logged, never returned
// to the caller of the gateway.
type Forwarder interface {
	Forward(ctx context.Context, logs []domain.RequestLog) error
}

type Gateway struct {
	store     domain.EventStore
	logger    *util.ServiceLogger
	metrics   *telemetry.Metrics
	forwarder Forwarder
}

type Params struct {
	Store   domain.EventStore
	Logger  *util.ServiceLogger
	Metrics *telemetry.Metrics
	// Forwarder is optional.
	Forwarder Forwarder
}

func NewGateway(p Params) *Gateway {
	return &Gateway{
		store:     p.Store,
		logger:    p.Logger,
		metrics:   p.Metrics,
		forwarder: p.Forwarder,
	}
}

func (g *Gateway) LogOne(ctx context.Context, rec domain.RequestLog) {
	g.store.Append(rec)
	g.observe(ctx, []domain.RequestLog{rec})
}

// LogBatch appends every element of the JSON array raw and returns how many
// were appended. Elements are decoded leniently; an element that is not an
// object becomes a record with no fields. If raw is not an array nothing is
// appended and ErrInvalidInput is returned.
func (g *Gateway) LogBatch(ctx context.Context, raw json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		g.metrics.RecordBatch(false)
		return 0, ErrInvalidInput
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		g.metrics.RecordBatch(false)
		return 0, ErrInvalidInput
	}

	logs := make([]domain.RequestLog, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &logs[i]); err != nil {
			logs[i] = domain.RequestLog{}
		}
	}

	g.store.AppendBatch(logs)
	g.metrics.RecordBatch(true)
	g.observe(ctx, logs)
	return len(logs), nil
}

func (g *Gateway) ClearAll(ctx context.Context) {
	g.store.Clear()
	g.metrics.RecordClear()
	g.logger.Info("request log store cleared")
}

func (g *Gateway) observe(ctx context.Context, logs []domain.RequestLog) {
	for _, l := range logs {
		g.metrics.RecordIngested(statusLabel(l.Status))
	}

	if g.forwarder == nil || len(logs) == 0 {
		return
	}
	if err := g.forwarder.Forward(ctx, logs); err != nil {
		g.logger.Warn("forwarding request logs failed", zap.Int("count", len(logs)), zap.Error(err))
	}
}

// statusLabel keeps metric label cardinality bounded.
func statusLabel(status *domain.Text) string {
	switch {
	case status.Is("success"):
		return "success"
	case status.Is("failure"):
		return "failure"
	case status == nil:
		return "absent"
	default:
		return "other"
	}
}
