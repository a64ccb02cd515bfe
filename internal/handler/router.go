package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/supportdesk/internal/metrics"
	"github.com/hitoshi/supportdesk/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	StoreProvider     middleware.StoreProvider
	ProfileCookie     middleware.ProfileCookieConfig
	CSRF              middleware.CSRFConfig
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// サービス
	AuthService    AuthServiceInterface
	UserService    UserServiceInterface
	TicketService  TicketServiceInterface
	ContentService ContentServiceInterface

	// ヘルスチェック
	HealthCheck HealthCheckFunc
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Session → Logging → RateLimit(General) → CSRF
//
// ガードはルートグループ単位で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.NotFound(middleware.WriteNotFound)

	// 運用エンドポイントはセッションを発行しない
	r.Get("/health", NewHealthHandler(deps.HealthCheck))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.SetupMetricsRoute(deps.MetricsGatherer))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.UserService)
	ticketHandler := NewTicketHandler(deps.TicketService)
	pageHandler := NewPageHandler(deps.ContentService)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRecoveryMiddleware())
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewSessionMiddleware(deps.StoreProvider, deps.ProfileCookie))
		r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

		// --- 公開ページ ---
		r.Get("/", pageHandler.Home)
		r.Get("/services", pageHandler.Services)
		r.Get("/faq", pageHandler.FAQ)
		r.Get("/contact", pageHandler.ContactPage)
		r.Post("/contact", pageHandler.SubmitContact)

		r.Handle("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))
		r.Get("/api/session", authHandler.Session)

		// --- 認証 ---
		r.Route("/auth", func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())

			// サインイン済みならトップへ
			r.Group(func(r chi.Router) {
				r.Use(middleware.GuestOnly(deps.Metrics))
				r.Get("/login", authHandler.LoginPage)
				r.Post("/login", authHandler.Login)
				r.Get("/register", authHandler.RegisterPage)
				r.Post("/register", authHandler.Register)
			})

			// 未サインインならログインへ
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(deps.Metrics))
				r.Get("/profile", authHandler.Me)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Post("/password", authHandler.ChangePassword)
				r.Get("/me", authHandler.Me)
			})

			// 状態に関わらず成功する
			r.Post("/logout", authHandler.Logout)
			r.Delete("/session", authHandler.ClearSession)
		})

		// --- クライアントポータル ---
		r.Route("/client", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Metrics))

			r.Get("/", ticketHandler.Dashboard)
			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", ticketHandler.ListTickets)
				r.Post("/", ticketHandler.CreateTicket)
				r.Get("/{id}", ticketHandler.GetTicket)
				r.Post("/{id}/messages", ticketHandler.AddMessage)
			})
		})
	})

	return r
}
