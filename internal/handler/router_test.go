package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/supportdesk/internal/auth"
	"github.com/hitoshi/supportdesk/internal/clock"
	"github.com/hitoshi/supportdesk/internal/content"
	"github.com/hitoshi/supportdesk/internal/metrics"
	"github.com/hitoshi/supportdesk/internal/middleware"
	"github.com/hitoshi/supportdesk/internal/repository"
	"github.com/hitoshi/supportdesk/internal/security"
	"github.com/hitoshi/supportdesk/internal/session"
	"github.com/hitoshi/supportdesk/internal/ticket"
	"github.com/hitoshi/supportdesk/internal/user"
	"github.com/prometheus/client_golang/prometheus"
)

// testClient はプロファイルCookieとCSRFトークンを保持してリクエストを送るテスト用クライアント。
type testClient struct {
	t       *testing.T
	handler http.Handler
	profile string
	csrf    string
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	manager := session.NewManager(repository.NewMemorySlotRepo(), session.ManagerConfig{})
	t.Cleanup(manager.Stop)
	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(limiter.Stop)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	sanitizer := security.NewTextSanitizer()
	delayer := clock.Instant{}

	return NewRouter(&RouterDeps{
		StoreProvider:   manager,
		RateLimiter:     limiter,
		Logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Metrics:         collector,
		MetricsGatherer: reg,
		AuthService:     auth.NewService(delayer, collector, auth.ServiceConfig{}),
		UserService:     user.NewService(delayer, collector, user.ServiceConfig{}),
		TicketService: ticket.NewService(
			repository.NewMemoryTicketRepo(ticket.SeedTickets()),
			sanitizer, delayer, collector, ticket.ServiceConfig{},
		),
		ContentService: content.NewService(sanitizer, delayer, 0),
	})
}

func newTestClient(t *testing.T, handler http.Handler) *testClient {
	c := &testClient{t: t, handler: handler}
	w := c.do(http.MethodGet, "/api/csrf-token", "")
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	c.csrf = body["token"]
	if c.profile == "" || c.csrf == "" {
		t.Fatalf("client setup failed: profile=%q csrf=%q", c.profile, c.csrf)
	}
	return c
}

func (c *testClient) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if c.profile != "" {
		req.AddCookie(&http.Cookie{Name: middleware.ProfileCookieName, Value: c.profile})
	}
	if c.csrf != "" {
		req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: c.csrf})
		req.Header.Set(middleware.CSRFHeaderName, c.csrf)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.ProfileCookieName {
			c.profile = cookie.Value
		}
	}
	return w
}

func TestRouter_PortalFlow(t *testing.T) {
	router := newTestRouter(t)
	c := newTestClient(t, router)

	// 未サインインのポータル進入はログインへ
	w := c.do(http.MethodGet, "/client", "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/auth/login" {
		t.Fatalf("anonymous /client: status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}
	w = c.do(http.MethodPost, "/client/tickets", `{}`)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("anonymous POST /client/tickets: status = %d, want 303", w.Code)
	}

	// ログインページは表示できる
	if w = c.do(http.MethodGet, "/auth/login", ""); w.Code != http.StatusOK {
		t.Fatalf("GET /auth/login status = %d", w.Code)
	}

	w = c.do(http.MethodPost, "/auth/login", `{"email":"client@example.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /auth/login status = %d, body = %s", w.Code, w.Body.String())
	}

	// サインイン後はログインページからトップへ
	w = c.do(http.MethodGet, "/auth/login", "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("authenticated /auth/login: status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}

	w = c.do(http.MethodGet, "/client", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /client status = %d", w.Code)
	}
	var dash dashboardResponse
	json.NewDecoder(w.Body).Decode(&dash)
	if dash.User == nil || dash.User.ID != auth.DemoUserID || dash.User.Email != "client@example.com" {
		t.Errorf("dashboard user = %+v", dash.User)
	}
	if dash.Stats.TotalTickets != 3 || dash.Stats.OpenTickets != 2 {
		t.Errorf("dashboard stats = %+v", dash.Stats)
	}

	w = c.do(http.MethodGet, "/client/tickets?q=wifi", "")
	var list []ticketSummaryResponse
	json.NewDecoder(w.Body).Decode(&list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("search wifi: status = %d, tickets = %+v", w.Code, list)
	}

	w = c.do(http.MethodPost, "/client/tickets/"+list[0].ID+"/messages", `{"content":"<b>Toujours</b> en panne"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add message status = %d, body = %s", w.Code, w.Body.String())
	}
	var detail ticketDetailResponse
	json.NewDecoder(w.Body).Decode(&detail)
	last := detail.Messages[len(detail.Messages)-1]
	if last.Content != "Toujours en panne" || last.UserName != "Client Test" || last.IsStaff {
		t.Errorf("last message = %+v", last)
	}

	// ログアウト後は再びガードされる
	if w = c.do(http.MethodPost, "/auth/logout", ""); w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	w = c.do(http.MethodGet, "/auth/profile", "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/auth/login" {
		t.Errorf("profile after logout: status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}
}

func TestRouter_ProfilesAreIsolated(t *testing.T) {
	router := newTestRouter(t)
	alice := newTestClient(t, router)
	bob := newTestClient(t, router)

	if alice.profile == bob.profile {
		t.Fatal("profiles must differ")
	}

	w := alice.do(http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1","confirmPassword":"secret1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}

	var sess sessionResponse
	json.NewDecoder(bob.do(http.MethodGet, "/api/session", "").Body).Decode(&sess)
	if sess.IsAuthenticated {
		t.Error("bob must stay anonymous")
	}
	json.NewDecoder(alice.do(http.MethodGet, "/api/session", "").Body).Decode(&sess)
	if !sess.IsAuthenticated || sess.User.Name != "Alice" || !strings.HasPrefix(sess.User.ID, "user-") {
		t.Errorf("alice session = %+v", sess)
	}
}

func TestRouter_CreatedTicketsAreVisibleToOwnerOnly(t *testing.T) {
	router := newTestRouter(t)
	alice := newTestClient(t, router)
	bob := newTestClient(t, router)
	alice.do(http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1","confirmPassword":"secret1"}`)
	bob.do(http.MethodPost, "/auth/register", `{"name":"Bob","email":"bob@example.com","password":"secret1","confirmPassword":"secret1"}`)

	w := alice.do(http.MethodPost, "/client/tickets", `{"subject":"Imprimante","category":"hardware","priority":"low","description":"L'imprimante du bureau ne répond plus."}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created ticketDetailResponse
	json.NewDecoder(w.Body).Decode(&created)

	var list []ticketSummaryResponse
	json.NewDecoder(bob.do(http.MethodGet, "/client/tickets", "").Body).Decode(&list)
	for _, tk := range list {
		if tk.ID == created.ID {
			t.Error("bob must not list alice's ticket")
		}
	}
	if w := bob.do(http.MethodGet, "/client/tickets/"+created.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("bob detail status = %d, want 404", w.Code)
	}
	if w := alice.do(http.MethodGet, "/client/tickets/"+created.ID, ""); w.Code != http.StatusOK {
		t.Errorf("alice detail status = %d, want 200", w.Code)
	}
}

func TestRouter_UpdateProfileKeepsPhone(t *testing.T) {
	router := newTestRouter(t)
	c := newTestClient(t, router)
	c.do(http.MethodPost, "/auth/login", `{"email":"client@example.com","password":"secret1"}`)

	w := c.do(http.MethodPut, "/auth/profile", `{"name":"Renamed","email":"renamed@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body identityResponse
	json.NewDecoder(w.Body).Decode(&body)
	if body.Name != "Renamed" || body.Phone != auth.DemoUserPhone || body.ID != auth.DemoUserID {
		t.Errorf("identity = %+v", body)
	}
}

func TestRouter_StateChangeWithoutCSRF_Returns403(t *testing.T) {
	router := newTestRouter(t)
	c := newTestClient(t, router)
	c.csrf = ""

	w := c.do(http.MethodPost, "/auth/login", `{"email":"client@example.com","password":"secret1"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRouter_PublicPagesAndOps(t *testing.T) {
	router := newTestRouter(t)
	c := newTestClient(t, router)

	for _, path := range []string{"/", "/services", "/faq", "/contact", "/health", "/metrics"} {
		if w := c.do(http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, w.Code)
		}
	}

	w := c.do(http.MethodGet, "/nowhere", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nowhere status = %d, want 404", w.Code)
	}
	if got := decodeErrorBody(t, w).Code; got != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", got)
	}
}

func TestRouter_HealthDoesNotIssueProfile(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.ProfileCookieName {
			t.Error("health endpoint must not issue a profile cookie")
		}
	}
}
