package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// NewCORSMiddleware は許可オリジンに対するCORSミドルウェアを返す。
// セッションCookieを送るためcredentialsを許可し、ワイルドカード(*)は使用しない。
func NewCORSMiddleware(allowedOrigins []string) func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
}
