package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// startedWriter はレスポンスの書き込みが始まったかどうかを記録する。
type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (s *startedWriter) WriteHeader(code int) {
	s.started = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *startedWriter) Write(b []byte) (int, error) {
	s.started = true
	return s.ResponseWriter.Write(b)
}

func (s *startedWriter) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// NewRecoveryMiddleware はpanicを捕捉し、500の統一エラーを返すミドルウェアを生成する。
// 生成系エンドポイントはサービス層でpanicを文言に変換するため、ここに到達するのはそれ以外の経路のみ。
// http.ErrAbortHandler はnet/httpに処理させるため再度panicする。
// レスポンスを書き始めた後のpanicでは本文を追記せず、ログだけを残す。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &startedWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				attrs := []slog.Attr{
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("response_started", sw.started),
				}
				if userID := OptionalUserID(r.Context()); userID != "" {
					attrs = append(attrs, slog.String("user_id", userID))
				}
				attrs = append(attrs, slog.String("stack", string(debug.Stack())))
				slog.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

				if !sw.started {
					WriteInternalServerError(w)
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
