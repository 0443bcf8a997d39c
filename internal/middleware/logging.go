package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// StatusObserver はレスポンスステータスの観測先。メトリクス収集に使用する。
type StatusObserver interface {
	ObserveHTTPStatus(code int)
}

// accessRecorder は最初に書き込まれたステータスコードと本文のバイト数を記録する。
type accessRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (a *accessRecorder) WriteHeader(code int) {
	if a.status == 0 {
		a.status = code
	}
	a.ResponseWriter.WriteHeader(code)
}

func (a *accessRecorder) Write(b []byte) (int, error) {
	if a.status == 0 {
		a.status = http.StatusOK
	}
	n, err := a.ResponseWriter.Write(b)
	a.bytes += n
	return n, err
}

// Unwrap は http.ResponseController が元のWriterを辿るために使う。
func (a *accessRecorder) Unwrap() http.ResponseWriter {
	return a.ResponseWriter
}

// statusCode は記録したステータスを返す。何も書き込まれなかった場合は200。
func (a *accessRecorder) statusCode() int {
	if a.status == 0 {
		return http.StatusOK
	}
	return a.status
}

func levelForStatus(code int) slog.Level {
	switch {
	case code >= http.StatusInternalServerError:
		return slog.LevelError
	case code >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// NewLoggingMiddleware はリクエストごとに "http_request" の構造化ログを出力するミドルウェアを返す。
// method、path、route（chiのルートパターン）、status、bytes、duration_ms、remote_ip と、
// ログイン済みの場合は user_id を記録する。user_id のためセッションミドルウェアの後に置くこと。
// 4xxはWARN、5xxはERRORで出力し、observer が nil でなければステータスコードを通知する。
func NewLoggingMiddleware(logger *slog.Logger, observer StatusObserver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &accessRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.statusCode()
			if observer != nil {
				observer.ObserveHTTPStatus(status)
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", rec.bytes),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				slog.String("remote_ip", clientIP(r)),
			}
			// ルーティング後はマッチしたパターンが入る
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					attrs = append(attrs, slog.String("route", pattern))
				}
			}
			if userID := OptionalUserID(r.Context()); userID != "" {
				attrs = append(attrs, slog.String("user_id", userID))
			}

			logger.LogAttrs(r.Context(), levelForStatus(status), "http_request", attrs...)
		})
	}
}
