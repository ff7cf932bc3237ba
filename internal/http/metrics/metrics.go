// Package metrics exposes request counters in the Prometheus text format
// without pulling in a client library.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

type Collector struct {
	requests    uint64
	errors      uint64
	transitions uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests() {
	atomic.AddUint64(&c.requests, 1)
}

func (c *Collector) IncErrors() {
	atomic.AddUint64(&c.errors, 1)
}

// IncTransitions counts committed pipeline moves.
func (c *Collector) IncTransitions() {
	atomic.AddUint64(&c.transitions, 1)
}

func (c *Collector) Snapshot() (requests, errors, transitions uint64) {
	return atomic.LoadUint64(&c.requests), atomic.LoadUint64(&c.errors), atomic.LoadUint64(&c.transitions)
}

type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var requests, errors, transitions uint64
	if h.collector != nil {
		requests, errors, transitions = h.collector.Snapshot()
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = fmt.Fprintf(w, "# HELP hrpipeline_requests_total Total number of HTTP requests.\n")
	_, _ = fmt.Fprintf(w, "# TYPE hrpipeline_requests_total counter\n")
	_, _ = fmt.Fprintf(w, "hrpipeline_requests_total %d\n", requests)
	_, _ = fmt.Fprintf(w, "# HELP hrpipeline_errors_total Total number of 5xx HTTP responses.\n")
	_, _ = fmt.Fprintf(w, "# TYPE hrpipeline_errors_total counter\n")
	_, _ = fmt.Fprintf(w, "hrpipeline_errors_total %d\n", errors)
	_, _ = fmt.Fprintf(w, "# HELP hrpipeline_transitions_total Total number of committed pipeline transitions.\n")
	_, _ = fmt.Fprintf(w, "# TYPE hrpipeline_transitions_total counter\n")
	_, _ = fmt.Fprintf(w, "hrpipeline_transitions_total %d\n", transitions)
}
