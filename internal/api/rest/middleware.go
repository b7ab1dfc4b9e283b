package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ctxKeyLog struct{}

type ctxKeyRequestID struct{}

// loggerFrom возвращает логгер запроса или стандартный, если middleware не подключён
func loggerFrom(ctx context.Context) logrus.FieldLogger {
	if log, ok := ctx.Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// requestLogger кладёт в контекст логгер с request_id и пишет итог запроса
func requestLogger(log logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.New().String()
			rec := &responseRecorder{ResponseWriter: w}

			reqLog := log.WithFields(logrus.Fields{
				"http.req.path":   r.URL.Path,
				"http.req.method": r.Method,
				"http.req.id":     requestID,
			})
			reqLog.Debug("request started")

			ctx := context.WithValue(r.Context(), ctxKeyLog{}, reqLog)
			ctx = context.WithValue(ctx, ctxKeyRequestID{}, requestID)
			w.Header().Set("X-Request-Id", requestID)

			defer func() {
				reqLog.WithFields(logrus.Fields{
					"http.resp.took_ms": time.Since(start).Milliseconds(),
					"http.resp.status":  rec.status,
					"http.resp.bytes":   rec.bytes,
				}).Debug("request complete")
			}()
			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}

// recoverer превращает панику обработчика в 500 без тела JSON
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				loggerFrom(r.Context()).WithField("panic", rv).Error("handler panicked")
				internalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
