// Package trace assigns request ids and logs each request's outcome.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "schoolsite/internal/log"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// Metrics counts completed requests.
type Metrics struct {
	TotalRequests int64
	ServerErrors  int64
	// TotalDuration is summed in microseconds.
	TotalDuration int64
}

// AverageDuration is the mean request latency, or 0 before any request.
func (m Metrics) AverageDuration() time.Duration {
	if m.TotalRequests == 0 {
		return 0
	}
	return time.Duration(m.TotalDuration/m.TotalRequests) * time.Microsecond
}

type Middleware struct {
	clientIP func(*http.Request) string
	total    atomic.Int64
	errors   atomic.Int64
	micros   atomic.Int64
}

// New returns trace middleware; clientIP may be nil.
func New(clientIP func(*http.Request) string) *Middleware {
	return &Middleware{clientIP: clientIP}
}

// Handler reuses a well-formed incoming X-Request-ID or mints a uuid,
// echoes it on the response, and stores it in the context together with a
// tagged logger. The context logger must already be set by log.Middleware.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ip := ""
		if m.clientIP != nil {
			ip = m.clientIP(r)
		}
		logger := applog.FromContext(r.Context()).With(applog.FieldRequestID, id)
		ctx := context.WithValue(applog.NewContext(r.Context(), logger), requestIDKey{}, id)
		r = r.WithContext(ctx)

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		m.total.Add(1)
		m.micros.Add(elapsed.Microseconds())
		if rw.status >= 500 {
			m.errors.Add(1)
		}

		fields := applog.NewFields().
			Request(r.Method, r.URL.Path, r.URL.RawQuery).
			Response(rw.status, elapsed.Milliseconds()).
			ClientIP(ip)
		logger.Log(ctx, applog.LevelForStatus(rw.status), "HTTP request completed", fields.Args()...)
	})
}

func (m *Middleware) Metrics() Metrics {
	return Metrics{
		TotalRequests: m.total.Load(),
		ServerErrors:  m.errors.Load(),
		TotalDuration: m.micros.Load(),
	}
}

// RequestID returns the id stored by Handler, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
