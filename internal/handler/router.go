package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/styleai/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	SessionParser      middleware.SessionParser
	CORSAllowedOrigins []string
	RateLimiter        *middleware.RateLimiter
	MaxBodyBytes       int64
	HTTPSOnly          bool
	StatusObserver     middleware.StatusObserver

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 履歴・統計
	UserService UserServiceInterface

	// AI生成
	StylistService StylistServiceInterface

	// ヘルスチェック
	KeyChecker       KeyChecker
	UploadDirChecker UploadDirChecker

	// nilの場合は /metrics を公開しない
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	SecurityHeaders → CORS → Session → Logging → Recovery → BodyLimit
//
// Sessionは匿名を許容するため全ルートに適用し、Loggingがuser_idを記録できるよう先に置く。
// /signup と /login にのみIP単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HTTPSOnly))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))
	r.Use(middleware.NewSessionMiddleware(deps.SessionParser))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusObserver))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewBodyLimitMiddleware(deps.MaxBodyBytes))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	stylistHandler := NewStylistHandler(deps.StylistService)
	healthHandler := NewHealthHandler(deps.KeyChecker, deps.UploadDirChecker)

	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証 ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.AuthMiddleware())
		}
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})
	r.Post("/logout", authHandler.Logout)

	// --- AI生成（匿名可） ---
	r.Post("/get_recommendation", stylistHandler.GetRecommendation)
	r.Post("/generate_pitch", stylistHandler.GeneratePitch)
	r.Post("/lead_score", stylistHandler.ScoreLead)
	r.Post("/generate_campaign", stylistHandler.GenerateCampaign)

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/me", authHandler.Me)
		r.Get("/platform_stats", userHandler.PlatformStats)

		// セッション必須
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireSessionMiddleware())
			r.Get("/history", userHandler.History)
			r.Get("/stats", userHandler.Stats)
		})
	})

	return r
}
