package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// RequestLog is one observed request outcome. Every field is optional and
// kept exactly as supplied; grouping defaults are applied by readers.
type RequestLog struct {
	Status       *Text    `json:"status,omitempty"`
	Region       *Text    `json:"region,omitempty"`
	Timestamp    *Text    `json:"timestamp,omitempty"`
	Latency      *Latency `json:"latency,omitempty"`
	ErrorCode    *Text    `json:"errorCode,omitempty"`
	ClientRegion *Text    `json:"clientRegion,omitempty"`
}

// EventStore holds request logs in append order.
type EventStore interface {
	Append(rec RequestLog)
	AppendBatch(recs []RequestLog)
	All() []RequestLog
	Clear()
	Len() int
}

// Text is a lenient string field. Any JSON scalar is accepted; numbers and
// booleans keep their literal text, objects and arrays their compact form.
type Text struct {
	value   string
	literal bool
}

func NewText(s string) *Text {
	return &Text{value: s}
}

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text{value: s}
			return nil
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		*t = Text{value: string(data), literal: true}
		return nil
	}
	*t = Text{value: buf.String(), literal: true}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t.literal && json.Valid([]byte(t.value)) {
		return []byte(t.value), nil
	}
	return json.Marshal(t.value)
}

func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return t.value
}

// Numeric reports whether the value arrived as a bare JSON number.
func (t *Text) Numeric() bool {
	if t == nil || !t.literal {
		return false
	}
	_, err := strconv.ParseFloat(t.value, 64)
	return err == nil
}

// Truthy is false for absent and empty values, and for the literals false
// and zero.
func (t *Text) Truthy() bool {
	if t == nil || t.value == "" {
		return false
	}
	if !t.literal {
		return true
	}
	if t.value == "false" {
		return false
	}
	n, err := strconv.ParseFloat(t.value, 64)
	return err != nil || n != 0
}

// Is compares against a plain string value. Literal numbers never match.
func (t *Text) Is(s string) bool {
	return t != nil && !t.literal && t.value == s
}

// KeyOr returns the grouping key, falling back to def for falsy values.
func (t *Text) KeyOr(def string) string {
	if !t.Truthy() {
		return def
	}
	return t.value
}

// Latency is an opaque non-negative duration. The supplied JSON is kept
// verbatim for re-encoding; values that are neither numbers nor numeric
// strings read as zero.
type Latency struct {
	value float64
	raw   json.RawMessage
}

func NewLatency(v float64) *Latency {
	return &Latency{value: v}
}

func (l *Latency) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		buf.Reset()
		buf.Write(data)
	}
	*l = Latency{raw: buf.Bytes()}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		l.value = n
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			l.value = n
		}
	}
	return nil
}

func (l Latency) MarshalJSON() ([]byte, error) {
	if l.raw != nil {
		return l.raw, nil
	}
	return json.Marshal(l.value)
}

// Present is false for absent and zero latencies.
func (l *Latency) Present() bool {
	return l != nil && l.value != 0
}

// Value returns the latency or zero when absent.
func (l *Latency) Value() float64 {
	if l == nil {
		return 0
	}
	return l.value
}
