// Package app はサブコマンドの解析と依存関係の組み立てを行う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/styleai/internal/auth"
	"github.com/hitoshi/styleai/internal/completion"
	"github.com/hitoshi/styleai/internal/config"
	"github.com/hitoshi/styleai/internal/database"
	"github.com/hitoshi/styleai/internal/handler"
	"github.com/hitoshi/styleai/internal/logger"
	"github.com/hitoshi/styleai/internal/metrics"
	"github.com/hitoshi/styleai/internal/middleware"
	"github.com/hitoshi/styleai/internal/repository"
	"github.com/hitoshi/styleai/internal/stylist"
	"github.com/hitoshi/styleai/internal/upload"
	"github.com/hitoshi/styleai/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、LOG_LEVELに従ってJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 設定読み込み前にログを使えるようにする
	logger.SetupDefault(w, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel)), nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(fmt.Sprintf("http://localhost:%s", port))
	}

	cfg, appLogger, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg, appLogger)
	}
}

// server はHTTPサーバーと、停止時に解放するリソースをまとめる。
type server struct {
	http    *http.Server
	db      *sql.DB
	limiter *middleware.RateLimiter
}

// close はサーバー以外のリソースを解放する。
func (s *server) close() {
	s.limiter.Stop()
	if err := s.db.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}
}

// newServer はDB接続・マイグレーション・全依存関係のワイヤリングを行い、起動前のサーバーを返す。
func newServer(cfg *config.Config, appLogger *slog.Logger) (*server, error) {
	// 1. DB接続とスキーマ
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database connection established")

	// 2. アップロード保存先
	photos := upload.NewStore(cfg.UploadDir)
	if err := photos.EnsureDir(); err != nil {
		db.Close()
		return nil, err
	}

	// 3. セッション署名鍵
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret, err = auth.GenerateSecret()
		if err != nil {
			db.Close()
			return nil, err
		}
		slog.Warn("SESSION_SECRET is not set; using a per-process key, sessions will not survive restarts")
	}
	sessions := auth.NewSessionCodec(secret, time.Duration(cfg.SessionMaxAge)*time.Second)

	// 4. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 5. リポジトリ・外部サービス・ドメインサービス
	userRepo := repository.NewSQLUserRepo(db)
	profileRepo := repository.NewSQLProfileRepo(db)
	recRepo := repository.NewSQLRecommendationRepo(db)

	if !cfg.HasCompletionKey() {
		slog.Warn("GROQ_API_KEY is not set; generation endpoints will return a setup message")
	}
	completer := completion.NewClient(completion.Config{
		APIKey:        cfg.CompletionAPIKey,
		BaseURL:       cfg.CompletionBaseURL,
		TextModel:     cfg.CompletionTextModel,
		VisionModel:   cfg.CompletionVisionModel,
		TextTimeout:   cfg.CompletionTextTimeout,
		VisionTimeout: cfg.CompletionVisionTimeout,
	}, completion.WithRecorder(collector))

	authService := auth.NewService(userRepo, sessions)
	userService := user.NewService(userRepo, profileRepo, recRepo)
	stylistService := stylist.NewService(profileRepo, recRepo, completer, photos, collector)

	// 6. ルーター
	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitAuth))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:             appLogger,
		SessionParser:      sessions,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		MaxBodyBytes:       cfg.MaxUploadBytes,
		HTTPSOnly:          cfg.CookieSecure,
		StatusObserver:     collector,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		UserService:    userService,
		StylistService: stylistService,

		KeyChecker:       completer,
		UploadDirChecker: photos,
		MetricsHandler:   metrics.Handler(reg),
	})

	// 書き込みタイムアウトは画像付き問い合わせとテキストへのフォールバックの合計より長くする
	writeTimeout := cfg.CompletionVisionTimeout + cfg.CompletionTextTimeout + 15*time.Second

	return &server{
		http: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		db:      db,
		limiter: limiter,
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config, appLogger *slog.Logger) error {
	srv, err := newServer(cfg, appLogger)
	if err != nil {
		return err
	}
	defer srv.close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", srv.http.Addr),
			slog.Duration("write_timeout", srv.http.WriteTimeout),
		)
		if err := srv.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	// 処理中の生成リクエストの完了を待つ
	ctx, cancel := context.WithTimeout(context.Background(), srv.http.WriteTimeout)
	defer cancel()

	if err := srv.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

type healthStatus struct {
	OK bool `json:"ok"`
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(baseURL string) error {
	var status healthStatus
	resp, err := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		R().
		SetResult(&status).
		Get("/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}
	if !status.OK {
		return fmt.Errorf("health check reported not ok")
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
