package server

import (
	"net/http"
	"strconv"
	"time"

	"accbridge/pkg/logging"

	"github.com/google/uuid"
)

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withMiddleware tags each request with an id and records metrics.
// Access logs go to debug level only; the server is quiet by default.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		s.metrics.requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(recorder.status)).Inc()
		logging.Debug("Server", "%s %s %d %s request_id=%s",
			r.Method, r.URL.Path, recorder.status, time.Since(start).Round(time.Millisecond), requestID)
	})
}
