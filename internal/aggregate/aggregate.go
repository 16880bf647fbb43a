// Package aggregate computes read-only statistics over a snapshot of request
// logs. None of the functions retain or modify their input.
package aggregate

import (
	"math"
	"strconv"
	"strings"
	"time"

	"qa-metrics/internal/domain"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	UnknownRegion = "unknown"
	NoErrorCode   = "none"

	// InvalidHour is the bucket for timestamps that cannot be parsed.
	InvalidHour = "Invalid Date"

	hourLayout = "2006-01-02T15"

	// maxEpochMillis bounds numeric timestamps to 100,000,000 days either
	// side of the Unix epoch.
	maxEpochMillis = 8.64e15
)

type RegionSummary struct {
	ServerRegion  string `json:"serverRegion"`
	SuccessCount  int    `json:"successCount"`
	FailureCount  int    `json:"failureCount"`
	AvgLatency    string `json:"avgLatency"`
	ErrorCodes    string `json:"errorCodes"`
	ClientRegions string `json:"clientRegions"`
}

type regionTally struct {
	success       int
	failure       int
	total         int
	latencySum    float64
	errorCodes    orderedSet
	clientRegions orderedSet
}

// Summarize builds one row per server region, in the order regions were
// first seen. Average latency is taken over every record of the region,
// records without latency counting as zero.
func Summarize(logs []domain.RequestLog) []RegionSummary {
	tallies := map[string]*regionTally{}
	var order []string

	for _, l := range logs {
		region := l.Region.KeyOr(UnknownRegion)
		t, ok := tallies[region]
		if !ok {
			t = &regionTally{}
			tallies[region] = t
			order = append(order, region)
		}

		switch {
		case l.Status.Is(StatusSuccess):
			t.success++
		case l.Status.Is(StatusFailure):
			t.failure++
			if l.ErrorCode.Truthy() {
				t.errorCodes.add(l.ErrorCode.String())
			}
		}

		t.latencySum += l.Latency.Value()
		t.total++

		if l.ClientRegion.Truthy() {
			t.clientRegions.add(l.ClientRegion.String())
		}
	}

	rows := make([]RegionSummary, 0, len(order))
	for _, region := range order {
		t := tallies[region]
		errorCodes := t.errorCodes.join(", ")
		if errorCodes == "" {
			errorCodes = "-"
		}
		rows = append(rows, RegionSummary{
			ServerRegion:  region,
			SuccessCount:  t.success,
			FailureCount:  t.failure,
			AvgLatency:    FormatFixed(t.latencySum/float64(t.total), 1),
			ErrorCodes:    errorCodes,
			ClientRegions: t.clientRegions.join(", "),
		})
	}
	return rows
}

// SuccessRateByRegion returns the percentage of "success" records per server
// region. Every record counts towards the total, whatever its status.
func SuccessRateByRegion(logs []domain.RequestLog) map[string]string {
	return successRate(logs, func(l domain.RequestLog) string {
		return l.Region.KeyOr(UnknownRegion)
	})
}

// SuccessRateByHour is SuccessRateByRegion keyed by UTC hour (YYYY-MM-DDTHH).
func SuccessRateByHour(logs []domain.RequestLog) map[string]string {
	return successRate(logs, func(l domain.RequestLog) string {
		return HourBucket(l.Timestamp)
	})
}

func successRate(logs []domain.RequestLog, key func(domain.RequestLog) string) map[string]string {
	type counts struct{ success, total int }
	stats := map[string]*counts{}

	for _, l := range logs {
		k := key(l)
		c, ok := stats[k]
		if !ok {
			c = &counts{}
			stats[k] = c
		}
		c.total++
		if l.Status.Is(StatusSuccess) {
			c.success++
		}
	}

	out := make(map[string]string, len(stats))
	for k, c := range stats {
		out[k] = FormatFixed(float64(c.success)/float64(c.total)*100, 2)
	}
	return out
}

// AverageLatencyByRegion averages only the records carrying a non-zero
// latency. A region whose records all lack latency reports "NaN".
func AverageLatencyByRegion(logs []domain.RequestLog) map[string]string {
	type acc struct {
		sum   float64
		count int
	}
	stats := map[string]*acc{}

	for _, l := range logs {
		region := l.Region.KeyOr(UnknownRegion)
		a, ok := stats[region]
		if !ok {
			a = &acc{}
			stats[region] = a
		}
		if l.Latency.Present() {
			a.sum += l.Latency.Value()
			a.count++
		}
	}

	out := make(map[string]string, len(stats))
	for region, a := range stats {
		avg := math.NaN()
		if a.count > 0 {
			avg = a.sum / float64(a.count)
		}
		out[region] = FormatFixed(avg, 2)
	}
	return out
}

// ErrorCodeDistribution counts records per error code regardless of status.
func ErrorCodeDistribution(logs []domain.RequestLog) map[string]int {
	return countBy(logs, func(l domain.RequestLog) string {
		return l.ErrorCode.KeyOr(NoErrorCode)
	})
}

func ClientRegionDistribution(logs []domain.RequestLog) map[string]int {
	return countBy(logs, func(l domain.RequestLog) string {
		return l.ClientRegion.KeyOr(UnknownRegion)
	})
}

func countBy(logs []domain.RequestLog, key func(domain.RequestLog) string) map[string]int {
	out := map[string]int{}
	for _, l := range logs {
		out[key(l)]++
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// HourBucket truncates a timestamp to its UTC hour. Bare JSON numbers are
// read as Unix milliseconds. Anything unparseable maps to InvalidHour.
func HourBucket(ts *domain.Text) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		return InvalidHour
	}
	return t.UTC().Format(hourLayout)
}

func parseTimestamp(ts *domain.Text) (time.Time, bool) {
	if ts == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(ts.String())

	if ts.Numeric() {
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
			return time.Time{}, false
		}
		return inBucketRange(time.UnixMilli(int64(ms)))
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return inBucketRange(t)
		}
	}
	return time.Time{}, false
}

// inBucketRange rejects instants whose UTC year needs more than four digits.
func inBucketRange(t time.Time) (time.Time, bool) {
	if y := t.UTC().Year(); y < 0 || y > 9999 {
		return time.Time{}, false
	}
	return t, true
}

// FormatFixed rounds half away from zero and prints exactly digits decimals.
// NaN prints as "NaN".
func FormatFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}
	p := math.Pow10(digits)
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', digits, 64)
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = map[string]struct{}{}
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) join(sep string) string {
	return strings.Join(s.items, sep)
}
