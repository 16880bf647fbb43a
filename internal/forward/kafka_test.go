package forward

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-metrics/internal/domain"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaForwarder_Forward(t *testing.T) {
	w := &recordingWriter{}
	f := &KafkaForwarder{writer: w}

	logs := []domain.RequestLog{
		{Status: domain.NewText("success"), Region: domain.NewText("us"), Latency: domain.NewLatency(12)},
		{Status: domain.NewText("failure")},
	}
	require.NoError(t, f.Forward(context.Background(), logs))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "us", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"status":"success","region":"us","latency":12}`, string(w.msgs[0].Value))
	assert.Equal(t, "unknown", string(w.msgs[1].Key))

	require.NoError(t, f.Forward(context.Background(), nil))
	assert.Len(t, w.msgs, 2, "empty input publishes nothing")

	require.NoError(t, f.Close())
	assert.True(t, w.closed)
}

func TestKafkaForwarder_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	f := &KafkaForwarder{writer: w}

	err := f.Forward(context.Background(), []domain.RequestLog{{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewKafkaForwarder(t *testing.T) {
	f := NewKafkaForwarder(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "request-logs"})

	w, ok := f.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "request-logs", w.Topic)
	assert.True(t, w.Async)
}
