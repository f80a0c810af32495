package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
)

// Snapshot is a point-in-time copy of the delivery counters
type Snapshot struct {
	// Sent counts every delivery attempt
	Sent      int64 `json:"sent"`
	Delivered int64 `json:"delivered"`
	// Failed counts failed attempts, retried or not
	Failed int64 `json:"failed"`
	// Retries counts failures that scheduled another attempt
	Retries int64 `json:"retries"`
	// Exhausted counts terminal failures
	Exhausted int64 `json:"exhausted"`
	Disabled  int64 `json:"disabled"`

	AverageResponseTime   time.Duration `json:"-"`
	AverageResponseTimeMS float64       `json:"average_response_time_ms"`

	// Endpoints is keyed by subscription URL
	Endpoints map[string]EndpointStats `json:"endpoints"`
}

// EndpointStats holds the counters of a single endpoint
type EndpointStats struct {
	Delivered             int64         `json:"delivered"`
	Failed                int64         `json:"failed"`
	AverageResponseTime   time.Duration `json:"-"`
	AverageResponseTimeMS float64       `json:"average_response_time_ms"`
}

type mean struct {
	n   int64
	sum time.Duration
}

func (m *mean) add(d time.Duration) {
	m.n++
	m.sum += d
}

func (m mean) value() time.Duration {
	if m.n == 0 {
		return 0
	}
	return m.sum / time.Duration(m.n)
}

type endpoint struct {
	delivered int64
	failed    int64
	latency   mean
}

/* Collector observes delivery notifications and keeps running totals
 * It only reads notifications; delivery state is never touched
 */
type Collector struct {
	mu        sync.Mutex
	counts    Snapshot
	latency   mean
	endpoints map[string]*endpoint
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{endpoints: make(map[string]*endpoint)}
}

// Notify implements webhook.Observer
func (c *Collector) Notify(ctx context.Context, n webhook.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch n.Kind {
	case webhook.DeliverySucceeded:
		c.counts.Sent++
		c.counts.Delivered++
		c.latency.add(n.Duration)
		e := c.endpoint(n.URL)
		e.delivered++
		e.latency.add(n.Duration)
	case webhook.DeliveryFailed:
		c.counts.Sent++
		c.counts.Failed++
		if n.WillRetry {
			c.counts.Retries++
		}
		if n.Terminal {
			c.counts.Exhausted++
		}
		c.latency.add(n.Duration)
		e := c.endpoint(n.URL)
		e.failed++
		e.latency.add(n.Duration)
	case webhook.WebhookDisabled:
		c.counts.Disabled++
	}
}

// Snapshot returns a copy of the current counters
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.counts
	s.AverageResponseTime = c.latency.value()
	s.AverageResponseTimeMS = milliseconds(s.AverageResponseTime)
	s.Endpoints = make(map[string]EndpointStats, len(c.endpoints))
	for url, e := range c.endpoints {
		avg := e.latency.value()
		s.Endpoints[url] = EndpointStats{
			Delivered:             e.delivered,
			Failed:                e.failed,
			AverageResponseTime:   avg,
			AverageResponseTimeMS: milliseconds(avg),
		}
	}
	return s
}

func (c *Collector) endpoint(url string) *endpoint {
	e, ok := c.endpoints[url]
	if !ok {
		e = &endpoint{}
		c.endpoints[url] = e
	}
	return e
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
