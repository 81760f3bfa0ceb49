package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
)

// statusRecorder remembers the status and body size a handler produced.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

type runFieldsKey struct{}

// runFields collects run attributes that handlers learn while serving a
// request, such as the run ID and pipeline name, for the access log.
type runFields struct {
	mu    sync.Mutex
	attrs []any
}

func (f *runFields) add(args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attrs = append(f.attrs, args...)
}

func (f *runFields) list() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.attrs...)
}

// annotateRun attaches key/value pairs to the access log line of r. It is a
// no-op outside LoggingMiddleware.
func annotateRun(r *http.Request, args ...any) {
	if f, ok := r.Context().Value(runFieldsKey{}).(*runFields); ok {
		f.add(args...)
	}
}

// LoggingMiddleware writes one access log line per request. Run attributes
// recorded by handlers through annotateRun are appended to it.
func LoggingMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			fields := &runFields{}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), runFieldsKey{}, fields)))

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			args = append(args, fields.list()...)

			if rec.status >= http.StatusInternalServerError {
				logger.Warn("API request failed", args...)
				return
			}
			logger.Info("API request", args...)
		})
	}
}

// RecoveryMiddleware answers handler panics with a JSON 500 body.
func RecoveryMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Handler panicked",
						"method", r.Method,
						"path", r.URL.Path,
						"error", err,
					)
					writeJSON(w, http.StatusInternalServerError, ErrorResponse{
						Error: "internal error",
						Code:  http.StatusInternalServerError,
					}, logger)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ChainMiddleware applies middlewares so that the first one listed runs
// outermost.
func ChainMiddleware(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
