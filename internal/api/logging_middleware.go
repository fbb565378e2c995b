package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budgetcoach/pkg/budget"
)

// requestOutcome is what a handler reports about the request it served.
type requestOutcome struct {
	errorMessage string
	errorCode    string
	analysisID   string
	strategy     budget.Strategy
}

func (o *requestOutcome) fail(message, code string) {
	o.errorMessage = message
	o.errorCode = code
}

func (o *requestOutcome) analyzed(a *budget.Analysis) {
	o.analysisID = a.ID
	o.strategy = a.Strategy
}

func (o *requestOutcome) attrs() []slog.Attr {
	var attrs []slog.Attr
	if o.analysisID != "" {
		attrs = append(attrs, slog.String("analysis_id", o.analysisID), slog.String("strategy", string(o.strategy)))
	}
	if o.errorCode != "" {
		attrs = append(attrs, slog.String("error_code", o.errorCode))
	}
	if o.errorMessage != "" {
		attrs = append(attrs, slog.String("error_message", o.errorMessage))
	}
	return attrs
}

// level picks the log level for a finished request. Every analysis failure
// is a 500, so bad input is told apart by its error code.
func (o *requestOutcome) level(status int) slog.Level {
	switch {
	case o.errorCode == string(budget.ErrCodeValidation):
		return slog.LevelWarn
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

type outcomeWriter struct {
	middleware.WrapResponseWriter
	outcome requestOutcome
}

// outcomeOf returns the outcome slot of w, or a throwaway one when w is not
// wrapped by requestLoggingMiddleware.
func outcomeOf(w http.ResponseWriter) *requestOutcome {
	if ow, ok := w.(*outcomeWriter); ok {
		return &ow.outcome
	}
	return &requestOutcome{}
}

func requestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ow := &outcomeWriter{WrapResponseWriter: middleware.NewWrapResponseWriter(w, r.ProtoMajor)}

			next.ServeHTTP(ow, r)

			status := ow.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", routePattern(r)),
				slog.Int("status", status),
				slog.Int("bytes", ow.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("remote_ip", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			}
			attrs = append(attrs, ow.outcome.attrs()...)

			logger.LogAttrs(context.Background(), ow.outcome.level(status), "http request completed", attrs...)
		})
	}
}

func recoveryLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				logger.Error("panic recovered",
					"request_id", middleware.GetReqID(r.Context()),
					"route", routePattern(r),
					"panic", fmt.Sprint(recovered),
					"stack", string(debug.Stack()),
				)

				if statusWriter, ok := w.(interface{ Status() int }); ok && statusWriter.Status() != 0 {
					return
				}
				writeErrorResponse(w, budget.NewError(budget.ErrCodeInternal, "internal server error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}
