// Package network provides a pre-configured, optimized HTTP client for media server communication.
package network

import (
	"net/http"
	"time"
)

// Downlink is the shared throughput meter fed by every request issued through Client.
var Downlink = NewMeter(newTransport())

// Client is the singleton HTTP client shared across the application.
// Every response it carries feeds the downlink estimate used by the
// playback mode heuristic.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: Downlink,
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}
