package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLog_DecodeFull(t *testing.T) {
	body := `{"status":"success","region":"us","timestamp":"2025-06-06T14:02:00Z","latency":120,"errorCode":"E1","clientRegion":"eu"}`

	var rec RequestLog
	require.NoError(t, json.Unmarshal([]byte(body), &rec))

	assert.True(t, rec.Status.Is("success"))
	assert.Equal(t, "us", rec.Region.String())
	assert.Equal(t, "2025-06-06T14:02:00Z", rec.Timestamp.String())
	assert.Equal(t, 120.0, rec.Latency.Value())
	assert.Equal(t, "E1", rec.ErrorCode.String())
	assert.Equal(t, "eu", rec.ClientRegion.String())
}

func TestRequestLog_AbsentFieldsStayAbsent(t *testing.T) {
	var rec RequestLog
	require.NoError(t, json.Unmarshal([]byte(`{"status":"failure","region":null}`), &rec))

	assert.Nil(t, rec.Region)
	assert.Nil(t, rec.Latency)
	assert.Nil(t, rec.ErrorCode)
	assert.Equal(t, "unknown", rec.Region.KeyOr("unknown"))
	assert.Equal(t, "none", rec.ErrorCode.KeyOr("none"))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failure"}`, string(out))
}

func TestText_LenientScalars(t *testing.T) {
	var rec RequestLog
	body := `{"errorCode":500,"status":true,"region":{"name":"us"},"clientRegion":""}`
	require.NoError(t, json.Unmarshal([]byte(body), &rec), "malformed fields must not reject the record")

	assert.Equal(t, "500", rec.ErrorCode.String())
	assert.True(t, rec.ErrorCode.Numeric())
	assert.False(t, rec.Status.Is("true"), "a literal boolean never matches a status string")
	assert.Equal(t, `{"name":"us"}`, rec.Region.String())
	assert.False(t, rec.ClientRegion.Truthy(), "empty strings are falsy")
	assert.Equal(t, "unknown", rec.ClientRegion.KeyOr("unknown"))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errorCode":500,"status":true,"region":{"name":"us"},"clientRegion":""}`, string(out))
}

func TestLatency_Decode(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		value   float64
		present bool
	}{
		{"number", `{"latency":42.5}`, 42.5, true},
		{"numeric string", `{"latency":" 80 "}`, 80, true},
		{"zero", `{"latency":0}`, 0, false},
		{"garbage string", `{"latency":"fast"}`, 0, false},
		{"object", `{"latency":{"ms":3}}`, 0, false},
		{"absent", `{}`, 0, false},
		{"null", `{"latency":null}`, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec RequestLog
			require.NoError(t, json.Unmarshal([]byte(tc.body), &rec))
			assert.Equal(t, tc.value, rec.Latency.Value())
			assert.Equal(t, tc.present, rec.Latency.Present())
		})
	}
}

func TestText_FalsyLiterals(t *testing.T) {
	var rec RequestLog
	body := `{"region":0,"clientRegion":false,"errorCode":0.0,"status":-0}`
	require.NoError(t, json.Unmarshal([]byte(body), &rec))

	assert.False(t, rec.Region.Truthy())
	assert.False(t, rec.ClientRegion.Truthy())
	assert.False(t, rec.ErrorCode.Truthy())
	assert.False(t, rec.Status.Truthy())
	assert.Equal(t, "unknown", rec.Region.KeyOr("unknown"))
	assert.Equal(t, "none", rec.ErrorCode.KeyOr("none"))

	var truthy RequestLog
	require.NoError(t, json.Unmarshal([]byte(`{"region":"0","clientRegion":true,"errorCode":7}`), &truthy))
	assert.True(t, truthy.Region.Truthy(), "the string \"0\" is not falsy")
	assert.True(t, truthy.ClientRegion.Truthy())
	assert.Equal(t, "7", truthy.ErrorCode.KeyOr("none"))
}

func TestLatency_KeepsSuppliedValue(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		value float64
	}{
		{"number", `{"latency":120}`, 120},
		{"fraction", `{"latency":12.50}`, 12.5},
		{"numeric string", `{"latency":"50"}`, 50},
		{"garbage string", `{"latency":"abc"}`, 0},
		{"boolean", `{"latency":true}`, 0},
		{"object", `{"latency":{"ms": 3}}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec RequestLog
			require.NoError(t, json.Unmarshal([]byte(tc.body), &rec))
			assert.Equal(t, tc.value, rec.Latency.Value())

			out, err := json.Marshal(rec)
			require.NoError(t, err)
			assert.JSONEq(t, tc.body, string(out))
		})
	}

	out, err := json.Marshal(RequestLog{Latency: NewLatency(42)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"latency":42}`, string(out))
}
