package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/supportdesk/internal/auth"
	"github.com/hitoshi/supportdesk/internal/middleware"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/repository"
	"github.com/hitoshi/supportdesk/internal/session"
	"github.com/hitoshi/supportdesk/internal/user"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn             func(ctx context.Context, store *session.Store, email, password string) (*model.Identity, error)
	registerFn          func(ctx context.Context, store *session.Store, input auth.RegisterInput) (*model.Identity, error)
	logoutFn            func(ctx context.Context, store *session.Store)
	clearLocalSessionFn func(ctx context.Context, store *session.Store)
}

func (m *mockAuthService) Login(ctx context.Context, store *session.Store, email, password string) (*model.Identity, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, store, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) Register(ctx context.Context, store *session.Store, input auth.RegisterInput) (*model.Identity, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, store, input)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, store *session.Store) {
	if m.logoutFn != nil {
		m.logoutFn(ctx, store)
	}
}

func (m *mockAuthService) ClearLocalSession(ctx context.Context, store *session.Store) {
	if m.clearLocalSessionFn != nil {
		m.clearLocalSessionFn(ctx, store)
	}
}

type mockUserService struct {
	updateProfileFn  func(ctx context.Context, store *session.Store, input user.ProfileInput) (*model.Identity, error)
	changePasswordFn func(ctx context.Context, store *session.Store, currentPassword, newPassword string) error
}

func (m *mockUserService) UpdateProfile(ctx context.Context, store *session.Store, input user.ProfileInput) (*model.Identity, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, store, input)
	}
	return nil, nil
}

func (m *mockUserService) ChangePassword(ctx context.Context, store *session.Store, currentPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, store, currentPassword, newPassword)
	}
	return nil
}

// --- ヘルパー ---

var testIdentity = model.Identity{ID: "user-1", Name: "Client Test", Email: "client@example.com", Phone: "+229 00000000"}

func newTestStore(t *testing.T, identity *model.Identity) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewSlotPersistence(repository.NewMemorySlotRepo(), "0123456789abcdef0123456789abcdef"))
	store.Restore(context.Background())
	if identity != nil {
		if err := store.Save(context.Background(), *identity); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}
	return store
}

func newStoreRequest(method, target, body string, store *session.Store) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if store != nil {
		req = req.WithContext(middleware.ContextWithStore(req.Context(), store))
	}
	return req
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// --- テスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	store := newTestStore(t, nil)
	var gotEmail, gotPassword string
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, s *session.Store, email, password string) (*model.Identity, error) {
			if s != store {
				t.Error("handler passed a different store")
			}
			gotEmail, gotPassword = email, password
			identity := testIdentity
			identity.Email = email
			return &identity, nil
		},
	}
	h := NewAuthHandler(svc, &mockUserService{})

	req := newStoreRequest(http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"secret1"}`, store)
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
	if gotEmail != "a@b.com" || gotPassword != "secret1" {
		t.Errorf("service got (%q, %q)", gotEmail, gotPassword)
	}

	var body authResponse
	json.NewDecoder(w.Body).Decode(&body)
	if body.User == nil || body.User.Email != "a@b.com" {
		t.Errorf("user = %+v, want email a@b.com", body.User)
	}
	if body.Redirect != "/" {
		t.Errorf("redirect = %q, want /", body.Redirect)
	}
}

func TestAuthHandler_Login_InvalidForm_Returns400WithFields(t *testing.T) {
	called := false
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, s *session.Store, email, password string) (*model.Identity, error) {
			called = true
			return nil, nil
		},
	}
	h := NewAuthHandler(svc, &mockUserService{})

	req := newStoreRequest(http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"123"}`, newTestStore(t, nil))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if called {
		t.Error("service should not be called for an invalid form")
	}
	body := decodeErrorBody(t, w)
	if body.Code != model.ErrCodeInvalidForm {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidForm)
	}
	if body.Fields["email"] != "Invalid email address" {
		t.Errorf("email field = %q", body.Fields["email"])
	}
	if body.Fields["password"] != "Password must be at least 6 characters" {
		t.Errorf("password field = %q", body.Fields["password"])
	}
}

func TestAuthHandler_Login_MalformedJSON_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	req := newStoreRequest(http.MethodPost, "/auth/login", `{`, newTestStore(t, nil))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decodeErrorBody(t, w).Code; got != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", got)
	}
}

func TestAuthHandler_Login_ServiceValidationError_Returns400(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, s *session.Store, email, password string) (*model.Identity, error) {
			return nil, model.NewValidationError("Email and password are required")
		},
	}
	h := NewAuthHandler(svc, &mockUserService{})

	req := newStoreRequest(http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"secret1"}`, newTestStore(t, nil))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decodeErrorBody(t, w).Message; got != "Email and password are required" {
		t.Errorf("message = %q", got)
	}
}

func TestAuthHandler_Login_NoStore_Returns500(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	req := newStoreRequest(http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"secret1"}`, nil)
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestAuthHandler_Register_Success_Returns201(t *testing.T) {
	var got auth.RegisterInput
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, s *session.Store, input auth.RegisterInput) (*model.Identity, error) {
			got = input
			return &model.Identity{ID: "user-new", Name: input.Name, Email: input.Email, Phone: input.Phone}, nil
		},
	}
	h := NewAuthHandler(svc, &mockUserService{})

	body := `{"name":"Jean","email":"jean@example.com","phone":"+229 123 456 7890","password":"secret1","confirmPassword":"secret1"}`
	req := newStoreRequest(http.MethodPost, "/auth/register", body, newTestStore(t, nil))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body = %s", w.Code, w.Body.String())
	}
	want := auth.RegisterInput{Name: "Jean", Email: "jean@example.com", Password: "secret1", Phone: "+229 123 456 7890"}
	if got != want {
		t.Errorf("input = %+v, want %+v", got, want)
	}
}

func TestAuthHandler_Register_PasswordMismatch_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	body := `{"name":"Jean","email":"jean@example.com","password":"secret1","confirmPassword":"secret2"}`
	req := newStoreRequest(http.MethodPost, "/auth/register", body, newTestStore(t, nil))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decodeErrorBody(t, w).Fields["confirmPassword"]; got != "Passwords do not match" {
		t.Errorf("confirmPassword field = %q", got)
	}
}

func TestAuthHandler_Logout_CallsServiceAndReturnsRedirect(t *testing.T) {
	store := newTestStore(t, &testIdentity)
	called := false
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, s *session.Store) {
			called = s == store
		},
	}
	h := NewAuthHandler(svc, &mockUserService{})

	req := newStoreRequest(http.MethodPost, "/auth/logout", "", store)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !called {
		t.Error("Logout was not called with the request store")
	}
	var body authResponse
	json.NewDecoder(w.Body).Decode(&body)
	if body.Redirect != "/" || body.User != nil {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthHandler_ClearSession_Returns204(t *testing.T) {
	called := false
	svc := &mockAuthService{
		clearLocalSessionFn: func(ctx context.Context, s *session.Store) { called = true },
	}
	h := NewAuthHandler(svc, &mockUserService{})

	req := newStoreRequest(http.MethodDelete, "/auth/session", "", newTestStore(t, &testIdentity))
	w := httptest.NewRecorder()
	h.ClearSession(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if !called {
		t.Error("ClearLocalSession was not called")
	}
}

func TestAuthHandler_Session(t *testing.T) {
	tests := []struct {
		name     string
		identity *model.Identity
		wantAuth bool
	}{
		{name: "anonymous", identity: nil, wantAuth: false},
		{name: "authenticated", identity: &testIdentity, wantAuth: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

			req := newStoreRequest(http.MethodGet, "/api/session", "", newTestStore(t, tt.identity))
			w := httptest.NewRecorder()
			h.Session(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var body sessionResponse
			json.NewDecoder(w.Body).Decode(&body)
			if body.IsAuthenticated != tt.wantAuth {
				t.Errorf("isAuthenticated = %v, want %v", body.IsAuthenticated, tt.wantAuth)
			}
			if (body.User != nil) != tt.wantAuth {
				t.Errorf("user = %+v, isAuthenticated must match user presence", body.User)
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	t.Run("authenticated", func(t *testing.T) {
		req := newStoreRequest(http.MethodGet, "/auth/me", "", newTestStore(t, &testIdentity))
		w := httptest.NewRecorder()
		h.Me(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body identityResponse
		json.NewDecoder(w.Body).Decode(&body)
		if body.ID != testIdentity.ID || body.Phone != testIdentity.Phone {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		req := newStoreRequest(http.MethodGet, "/auth/me", "", newTestStore(t, nil))
		w := httptest.NewRecorder()
		h.Me(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	var got user.ProfileInput
	userSvc := &mockUserService{
		updateProfileFn: func(ctx context.Context, s *session.Store, input user.ProfileInput) (*model.Identity, error) {
			got = input
			return &model.Identity{ID: "user-1", Name: input.Name, Email: input.Email, Phone: "+229 00000000"}, nil
		},
	}
	h := NewAuthHandler(&mockAuthService{}, userSvc)

	req := newStoreRequest(http.MethodPut, "/auth/profile", `{"name":"New","email":"new@example.com"}`, newTestStore(t, &testIdentity))
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
	if got.Name != "New" || got.Email != "new@example.com" || got.Phone != "" {
		t.Errorf("input = %+v", got)
	}
	var body identityResponse
	json.NewDecoder(w.Body).Decode(&body)
	if body.Phone != "+229 00000000" {
		t.Errorf("phone = %q, want previous phone kept", body.Phone)
	}
}

func TestAuthHandler_UpdateProfile_NotAuthenticated_Returns401(t *testing.T) {
	userSvc := &mockUserService{
		updateProfileFn: func(ctx context.Context, s *session.Store, input user.ProfileInput) (*model.Identity, error) {
			return nil, model.NewNotAuthenticatedError()
		},
	}
	h := NewAuthHandler(&mockAuthService{}, userSvc)

	req := newStoreRequest(http.MethodPut, "/auth/profile", `{"name":"New","email":"new@example.com"}`, newTestStore(t, nil))
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "accepted",
			body:       `{"currentPassword":"secret1","newPassword":"secret2","confirmPassword":"secret2"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "form mismatch",
			body:       `{"currentPassword":"secret1","newPassword":"secret2","confirmPassword":"other22"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "internal error",
			body:       `{"currentPassword":"secret1","newPassword":"secret2","confirmPassword":"secret2"}`,
			serviceErr: errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userSvc := &mockUserService{
				changePasswordFn: func(ctx context.Context, s *session.Store, current, next string) error {
					return tt.serviceErr
				},
			}
			h := NewAuthHandler(&mockAuthService{}, userSvc)

			req := newStoreRequest(http.MethodPost, "/auth/password", tt.body, newTestStore(t, &testIdentity))
			w := httptest.NewRecorder()
			h.ChangePassword(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestAuthHandler_FormPages(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	for name, fn := range map[string]http.HandlerFunc{"login": h.LoginPage, "register": h.RegisterPage} {
		t.Run(name, func(t *testing.T) {
			req := newStoreRequest(http.MethodGet, "/auth/"+name, "", newTestStore(t, nil))
			w := httptest.NewRecorder()
			fn(w, req)

			var body formPageResponse
			json.NewDecoder(w.Body).Decode(&body)
			if body.Page != name || body.Session.IsAuthenticated {
				t.Errorf("body = %+v", body)
			}
		})
	}
}
