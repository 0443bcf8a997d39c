package middleware

import (
	"net/http"

	"github.com/hitoshi/styleai/internal/model"
)

// NewBodyLimitMiddleware はリクエストボディの上限を設けるミドルウェアを返す。
// Content-Lengthが上限を超える場合は読み込まずに413を返す。
// Content-Lengthが無い場合は http.MaxBytesReader で読み込み時に打ち切り、
// ハンドラ側で *http.MaxBytesError を413に変換する。
func NewBodyLimitMiddleware(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				WriteErrorResponse(w, http.StatusRequestEntityTooLarge, model.NewPayloadTooLargeError(limit))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
