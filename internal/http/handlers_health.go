package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(map[string]string{
		"status": "ok",
		"uptime": time.Since(s.metrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 when storage does not answer a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"storage": "ok"}
	status, code := "ready", http.StatusOK
	if s.pinger == nil {
		checks["storage"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.pinger.Ping(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	tm := s.tracer.Metrics()
	rl := s.limiter.Metrics()
	m := &s.metrics

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v float64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %g\n\n", name, help, name, name, v)
	}

	counter("http_requests_total", "Completed HTTP requests.", tm.TotalRequests)
	counter("http_server_errors_total", "Requests answered with a 5xx status.", tm.ServerErrors)
	gauge("http_request_duration_avg_seconds", "Mean request latency.", tm.AverageDuration().Seconds())
	counter("fees_created_total", "Fee records created.", m.feesCreated.Load())
	counter("fees_updated_total", "Fee records updated.", m.feesUpdated.Load())
	counter("fees_deleted_total", "Fee records deleted.", m.feesDeleted.Load())
	counter("fee_cache_hits_total", "Fee list cache hits.", m.cacheHits.Load())
	counter("fee_cache_misses_total", "Fee list cache misses.", m.cacheMisses.Load())
	gauge("fee_cache_entries", "Entries in the fee list cache.", float64(s.feeCache.Size()))
	counter("rate_limit_rejections_total", "Requests rejected by the rate limiter.", rl.Rejected)
	gauge("rate_limit_clients", "Clients tracked by the rate limiter.", float64(rl.Clients))
	counter("suspicious_requests_total", "Requests matching a probe pattern.", s.detector.SuspiciousCount())
	gauge("uptime_seconds", "Seconds since the server started.", time.Since(m.started).Seconds())
}
