package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
	"github.com/nekruzvatanshoev/carval/pkg/carval/metrics"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const loggerKey ctxKey = iota

// requestContext tags every request with an id, a scoped logger and a
// metrics sample.
func (h *httpServer) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		reqLogger := h.log.With(map[string]interface{}{
			"request_id": requestID,
		})
		httpLogger := reqLogger.With(map[string]interface{}{
			"http_method": r.Method,
			"http_path":   route,
		})

		ctx := context.WithValue(r.Context(), loggerKey, reqLogger)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		httpLogger.Info("request finished", map[string]interface{}{
			"status_code":   status,
			"bytes_written": ww.BytesWritten(),
			"duration_ms":   time.Since(started).Milliseconds(),
		})
	})
}

func (h *httpServer) requestLogger(r *http.Request) logger.Logger {
	if l, ok := r.Context().Value(loggerKey).(logger.Logger); ok {
		return l
	}
	return h.log
}
