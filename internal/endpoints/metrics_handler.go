package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"qa-metrics/internal/aggregate"
	"qa-metrics/internal/domain"
	"qa-metrics/internal/ingest"
	"qa-metrics/internal/util"
)

type LogBatchRequest struct {
	Logs json.RawMessage `json:"logs"`
}

type LogsResponse struct {
	Requests []domain.RequestLog `json:"requests"`
}

// Metrics serves request log ingestion and the aggregate views over it.
type Metrics struct {
	Response APIResponse
	logger   *util.ServiceLogger
	store    domain.EventStore
	gateway  *ingest.Gateway
}

func (m *Metrics) Init(store domain.EventStore, gateway *ingest.Gateway, webSlogger *util.ServiceLogger) {
	m.store = store
	m.gateway = gateway
	m.logger = webSlogger
}

// LogHandler appends one request log. An empty body logs a record with no
// fields.
func (m *Metrics) LogHandler(w http.ResponseWriter, r *http.Request) {
	var rec domain.RequestLog

	err := json.NewDecoder(r.Body).Decode(&rec)
	if err != nil && !errors.Is(err, io.EOF) {
		m.logger.Error("Occured while unmarshalling request log", zap.Error(err))
		m.Response.WriteErrorResponse(w, fmt.Errorf("%w: %v", ErrInvalidRequestBody, err))
		return
	}

	m.gateway.LogOne(r.Context(), rec)
	m.Response.WriteMessageResponse(w, "Logged")
}

func (m *Metrics) LogBatchHandler(w http.ResponseWriter, r *http.Request) {
	var req LogBatchRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		m.logger.Error("Occured while unmarshalling log batch", zap.Error(err))
		m.Response.WriteErrorResponse(w, fmt.Errorf("%w: %v", ErrInvalidRequestBody, err))
		return
	}

	count, err := m.gateway.LogBatch(r.Context(), req.Logs)
	if err != nil {
		m.logger.Warn("Rejected log batch", zap.Error(err))
		m.Response.WriteErrorResponse(w, err)
		return
	}

	m.logger.Debug("Log batch appended", zap.Int("count", count))
	m.Response.WriteMessageResponse(w, fmt.Sprintf("%d logs added successfully.", count))
}

func (m *Metrics) GetLogsHandler(w http.ResponseWriter, r *http.Request) {
	m.Response.WriteResultResponse(w, LogsResponse{Requests: m.store.All()})
}

func (m *Metrics) ClearLogsHandler(w http.ResponseWriter, r *http.Request) {
	m.gateway.ClearAll(r.Context())
	m.Response.WriteMessageResponse(w, "All logs deleted successfully")
}

func (m *Metrics) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	m.Response.WriteResultResponse(w, aggregate.Summarize(m.store.All()))
}

func (m *Metrics) SuccessRateHandler(w http.ResponseWriter, r *http.Request) {
	m.Response.WriteResultResponse(w, aggregate.SuccessRateByRegion(m.store.All()))
}

func (m *Metrics) LatencyHandler(w http.ResponseWriter, r *http.Request) {
	m.Response.WriteResultResponse(w, aggregate.AverageLatencyByRegion(m.store.All()))
}

func (m *Metrics) ErrorCodesHandler(w http.ResponseWriter, r *http.Request) {
	m.Response.WriteResultResponse(w, aggregate.ErrorCodeDistribution(m.store.All()))
}

func (m *Metrics) ClientRegionHandler(w http.ResponseWriter, r *http.Request) {
	m.Response.WriteResultResponse(w, aggregate.ClientRegionDistribution(m.store.All()))
}

func (m *Metrics) SuccessRateByHourHandler(w http.ResponseWriter, r *http.Request) {
	m.Response.WriteResultResponse(w, aggregate.SuccessRateByHour(m.store.All()))
}
