// Package network provides a pre-configured, optimized HTTP client for media server communication.
package network

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lumen-cli/lumen/key"
	"github.com/spf13/viper"
)

// Grade is a coarse classification of the current network throughput.
type Grade int

const (
	GradeLow Grade = iota
	GradeMedium
	GradeHigh
)

func (g Grade) String() string {
	switch g {
	case GradeLow:
		return "low"
	case GradeMedium:
		return "medium"
	default:
		return "high"
	}
}

// GradeFor classifies an instantaneous downlink estimate in Mbit/s.
// Only GradeHigh is considered good enough to request direct play.
func GradeFor(mbps float64) Grade {
	switch {
	case mbps < 3:
		return GradeLow
	case mbps < 10:
		return GradeMedium
	default:
		return GradeHigh
	}
}

// minSampleBytes filters out tiny responses whose timing says nothing about throughput.
const minSampleBytes = 16 * 1024

// sampleTTL bounds how long a throughput observation counts as "instantaneous".
const sampleTTL = 30 * time.Second

// Meter estimates downlink throughput by observing the size and duration of
// HTTP responses passing through it. It wraps an http.RoundTripper so every
// media server call doubles as a passive bandwidth probe.
type Meter struct {
	next http.RoundTripper

	mu       sync.Mutex
	mbps     float64
	sampled  time.Time
	hasValue bool
}

// NewMeter wraps the given transport. A nil next falls back to http.DefaultTransport.
func NewMeter(next http.RoundTripper) *Meter {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Meter{next: next}
}

// RoundTrip implements http.RoundTripper, timing the full body read of each response.
func (m *Meter) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := m.next.RoundTrip(req)
	if err != nil || resp == nil || resp.Body == nil {
		return resp, err
	}

	resp.Body = &meteredBody{
		body:  resp.Body,
		meter: m,
		start: start,
	}
	return resp, nil
}

// DownlinkMbps returns the most recent throughput estimate in Mbit/s, or the
// configured default when no usable sample exists.
func (m *Meter) DownlinkMbps() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasValue || time.Since(m.sampled) > sampleTTL {
		return viper.GetFloat64(key.SessionDefaultDownlinkMbps)
	}
	return m.mbps
}

// CurrentGrade classifies the current downlink estimate.
func (m *Meter) CurrentGrade() Grade {
	return GradeFor(m.DownlinkMbps())
}

// record stores a completed transfer observation.
func (m *Meter) record(bytes int64, elapsed time.Duration) {
	if bytes < minSampleBytes || elapsed <= 0 {
		return
	}

	mbps := float64(bytes) * 8 / elapsed.Seconds() / 1e6

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mbps = mbps
	m.sampled = time.Now()
	m.hasValue = true
}

// meteredBody counts bytes until the body is closed, then reports the sample.
type meteredBody struct {
	body  io.ReadCloser
	meter *Meter
	start time.Time
	read  int64
	done  bool
}

func (b *meteredBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	b.read += int64(n)
	return n, err
}

func (b *meteredBody) Close() error {
	if !b.done {
		b.done = true
		b.meter.record(b.read, time.Since(b.start))
	}
	return b.body.Close()
}
