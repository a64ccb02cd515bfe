package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/supportdesk/internal/auth"
	"github.com/hitoshi/supportdesk/internal/clock"
	"github.com/hitoshi/supportdesk/internal/config"
	"github.com/hitoshi/supportdesk/internal/content"
	"github.com/hitoshi/supportdesk/internal/database"
	"github.com/hitoshi/supportdesk/internal/handler"
	"github.com/hitoshi/supportdesk/internal/logger"
	"github.com/hitoshi/supportdesk/internal/metrics"
	"github.com/hitoshi/supportdesk/internal/middleware"
	"github.com/hitoshi/supportdesk/internal/repository"
	"github.com/hitoshi/supportdesk/internal/security"
	"github.com/hitoshi/supportdesk/internal/session"
	"github.com/hitoshi/supportdesk/internal/ticket"
	"github.com/hitoshi/supportdesk/internal/user"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
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
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("slot_backend", cfg.SlotBackend),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// slotBackend はスロットリポジトリと、その接続の疎通確認・解放処理をまとめたもの。
type slotBackend struct {
	repo  repository.SlotRepository
	check handler.HealthCheckFunc
	close func() error
}

// openSlotBackend は設定に応じたスロットリポジトリを開き、疎通を確認する。
func openSlotBackend(ctx context.Context, cfg *config.Config) (*slotBackend, error) {
	switch cfg.SlotBackend {
	case config.SlotBackendMemory:
		return &slotBackend{
			repo:  repository.NewMemorySlotRepo(),
			close: func() error { return nil },
		}, nil

	case config.SlotBackendFile:
		repo, err := repository.NewFileSlotRepo(cfg.SlotDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open slot directory: %w", err)
		}
		return &slotBackend{
			repo:  repo,
			close: func() error { return nil },
		}, nil

	case config.SlotBackendPostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		ping := func(ctx context.Context) error { return database.Ping(ctx, db) }
		if err := pingWithRetry(ctx, "postgres", cfg.SlotConnectAttempts, ping); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		)
		return &slotBackend{
			repo:  repository.NewPostgresSlotRepo(db),
			check: ping,
			close: db.Close,
		}, nil

	case config.SlotBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		if err := pingWithRetry(ctx, "redis", cfg.SlotConnectAttempts, ping); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("redis connection established", slog.String("addr", cfg.RedisAddr))
		return &slotBackend{
			repo:  repository.NewRedisSlotRepo(client),
			check: ping,
			close: client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown slot backend %q", cfg.SlotBackend)
	}
}

// server はHTTPサーバーと停止時に解放する資源をまとめたもの。
type server struct {
	http     *http.Server
	shutdown func()
}

// newServer は全依存関係をワイヤリングし、HTTPサーバーを構築する。
func newServer(cfg *config.Config, backend *slotBackend, delayer clock.Delayer) *server {
	// 1. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// 2. セッション
	manager := session.NewManager(backend.repo, session.ManagerConfig{
		IdleTTL:         cfg.StoreIdleTTL,
		CleanupInterval: session.DefaultManagerConfig().CleanupInterval,
	})

	// 3. ドメインサービス
	sanitizer := security.NewTextSanitizer()
	authService := auth.NewService(delayer, collector, auth.ServiceConfig{
		LoginDelay:    cfg.LoginDelay,
		RegisterDelay: cfg.RegisterDelay,
	})
	userService := user.NewService(delayer, collector, user.ServiceConfig{
		ProfileDelay:  cfg.ProfileDelay,
		PasswordDelay: cfg.PasswordDelay,
	})
	ticketService := ticket.NewService(
		repository.NewMemoryTicketRepo(ticket.SeedTickets()),
		sanitizer, delayer, collector,
		ticket.ServiceConfig{Delay: cfg.TicketDelay},
	)
	contentService := content.NewService(sanitizer, delayer, cfg.ContactDelay)

	// 4. ルーター
	// configのレート制限はreq/min単位なのでreq/secに変換する
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.AuthRate = rate.Limit(float64(cfg.RateLimitAuth) / 60.0)
	rateLimiterCfg.AuthBurst = cfg.RateLimitAuth
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)

	router := handler.NewRouter(&handler.RouterDeps{
		StoreProvider: manager,
		ProfileCookie: middleware.ProfileCookieConfig{
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.ProfileMaxAge,
		},
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		Metrics:         collector,
		MetricsGatherer: reg,

		AuthService:    authService,
		UserService:    userService,
		TicketService:  ticketService,
		ContentService: contentService,

		HealthCheck: backend.check,
	})

	return &server{
		http: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		shutdown: func() {
			rateLimiter.Stop()
			manager.Stop()
		},
	}
}

// runServe はHTTPサーバーモードで起動する。
// スロットバックエンドを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	backend, err := openSlotBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.close(); err != nil {
			slog.Warn("failed to close slot backend", slog.String("error", err.Error()))
		}
	}()

	srv := newServer(cfg, backend, clock.Real{})
	defer srv.shutdown()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", srv.http.Addr),
		)
		if err := srv.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down API server...")

	// 実行中のセッション操作は遅延を含めて完了まで待つ
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はスロットテーブルのマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("migration requires DATABASE_URL")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
