package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/supportdesk/internal/guard"
	"github.com/hitoshi/supportdesk/internal/metrics"
)

// NewGuardMiddleware はルート進入ごとにポリシーを1回評価し、
// 拒否された場合はリダイレクトを返すミドルウェアを生成する。
// GETとHEADは302、状態変更メソッドは303でリダイレクトする。
// SessionMiddlewareの後に配置する必要がある。
func NewGuardMiddleware(policy guard.Policy, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, err := StoreFromContext(r.Context())
			if err != nil {
				slog.Error("guard evaluated without session store",
					slog.String("path", r.URL.Path),
				)
				WriteInternalServerError(w)
				return
			}

			state := guard.StateOf(store.Session())
			decision := guard.Evaluate(policy, state)
			if decision.Allow {
				next.ServeHTTP(w, r)
				return
			}

			if collector != nil {
				collector.RecordGuardRedirect(string(policy))
			}
			slog.Info("route guard redirect",
				slog.String("policy", string(policy)),
				slog.String("state", state.String()),
				slog.String("path", r.URL.Path),
				slog.String("redirect_to", decision.RedirectTo),
			)
			http.Redirect(w, r, decision.RedirectTo, redirectStatus(r.Method))
		})
	}
}

// RequireAuth は未サインインのユーザーをログインページへ送るミドルウェアを返す。
func RequireAuth(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return NewGuardMiddleware(guard.RequireAuth, collector)
}

// GuestOnly はサインイン済みのユーザーをホームへ戻すミドルウェアを返す。
func GuestOnly(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return NewGuardMiddleware(guard.GuestOnly, collector)
}

func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
