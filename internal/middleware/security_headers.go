package middleware

import (
	"net/http"
	"slices"
)

// apiResponseHeaders はJSON APIの全レスポンスに付与するヘッダー。
// レスポンスは文書として描画・埋め込みされず、セッションや履歴を含むためキャッシュもさせない。
var apiResponseHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	{"Cache-Control", "no-store"},
}

const hstsHeaderValue = "max-age=31536000; includeSubDomains"

// NewSecurityHeadersMiddleware はセキュリティ関連のレスポンスヘッダーを付与するミドルウェアを返す。
// httpsOnly が true の場合（COOKIE_SECURE=true の本番構成）はHSTSも付与する。
func NewSecurityHeadersMiddleware(httpsOnly bool) func(next http.Handler) http.Handler {
	headers := slices.Clone(apiResponseHeaders)
	if httpsOnly {
		headers = append(headers, [2]string{"Strict-Transport-Security", hstsHeaderValue})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range headers {
				h.Set(kv[0], kv[1])
			}
			next.ServeHTTP(w, r)
		})
	}
}
