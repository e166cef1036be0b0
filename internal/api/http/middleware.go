package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	ilog "github.com/amakane-hakari/sortkv/internal/log"
)

type ctxKey int

const requestIDKey ctxKey = iota

const headerRequestID = "X-Request-ID"

// GetRequestID はコンテキストからリクエストIDを取得します。
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// RequestIDMiddleware はリクエストIDを管理するミドルウェアです。
// ヘッダーに ID が無ければ UUIDv4 を割り当てます。
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(headerRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)
			ctx := context.WithValue(r.Context(), requestIDKey, rid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoverMiddleware はパニックを 500 に変換するミドルウェアです。
func RecoverMiddleware(l ilog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					if l != nil {
						l.Error("panic.recovered",
							"request_id", GetRequestID(r.Context()),
							"panic", rec,
							"stack", string(debug.Stack()),
						)
					}
					writeError(w, Internal("panic recovered"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog はリクエストごとに access.log を記録するミドルウェアです。
func AccessLog(l ilog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			l.Info("access.log",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", ww.BytesWritten(),
				"remote", remoteIP(r),
			)
		})
	}
}

func remoteIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
