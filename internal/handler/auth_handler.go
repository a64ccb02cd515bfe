// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/supportdesk/internal/auth"
	"github.com/hitoshi/supportdesk/internal/guard"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/session"
	"github.com/hitoshi/supportdesk/internal/user"
	"github.com/hitoshi/supportdesk/internal/validation"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, store *session.Store, email, password string) (*model.Identity, error)
	Register(ctx context.Context, store *session.Store, input auth.RegisterInput) (*model.Identity, error)
	Logout(ctx context.Context, store *session.Store)
	ClearLocalSession(ctx context.Context, store *session.Store)
}

// UserServiceInterface はプロフィール関連のハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	UpdateProfile(ctx context.Context, store *session.Store, input user.ProfileInput) (*model.Identity, error)
	ChangePassword(ctx context.Context, store *session.Store, currentPassword, newPassword string) error
}

var (
	_ AuthServiceInterface = (*auth.Service)(nil)
	_ UserServiceInterface = (*user.Service)(nil)
)

// AuthHandler はサインイン、会員登録、プロフィール関連のHTTPハンドラー。
type AuthHandler struct {
	service     AuthServiceInterface
	userService UserServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, userService UserServiceInterface) *AuthHandler {
	return &AuthHandler{
		service:     service,
		userService: userService,
	}
}

// authResponse はサインイン系操作の成功レスポンス。
// Redirectはクライアントが次に遷移するパス。
type authResponse struct {
	User     *identityResponse `json:"user"`
	Redirect string            `json:"redirect"`
}

// formPageResponse はフォームページの表示情報。
type formPageResponse struct {
	Page    string          `json:"page"`
	Session sessionResponse `json:"session"`
}

// messageResponse は本文を持たない操作の成功レスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// LoginPage はログインページを返す。
// GET /auth/login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.formPage(w, r, "login")
}

// RegisterPage は会員登録ページを返す。
// GET /auth/register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.formPage(w, r, "register")
}

func (h *AuthHandler) formPage(w http.ResponseWriter, r *http.Request, page string) {
	store := requestStore(w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, formPageResponse{Page: page, Session: toSessionResponse(store.Session())})
}

// Login はメールアドレスとパスワードでサインインする。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}

	var form validation.LoginForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if errs := form.Validate(); errs != nil {
		handleServiceError(w, model.NewInvalidFormError(errs))
		return
	}

	identity, err := h.service.Login(r.Context(), store, form.Email, form.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: toIdentityResponse(identity), Redirect: guard.HomePath})
}

// Register は会員登録してサインインする。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}

	var form validation.RegisterForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if errs := form.Validate(); errs != nil {
		handleServiceError(w, model.NewInvalidFormError(errs))
		return
	}

	identity, err := h.service.Register(r.Context(), store, auth.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Phone:    form.Phone,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: toIdentityResponse(identity), Redirect: guard.HomePath})
}

// Logout はサインアウトする。未サインインでも成功する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}

	h.service.Logout(r.Context(), store)
	writeJSON(w, http.StatusOK, authResponse{Redirect: guard.HomePath})
}

// ClearSession はローカルに保持されたセッションを破棄する。
// DELETE /auth/session
func (h *AuthHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}

	h.service.ClearLocalSession(r.Context(), store)
	w.WriteHeader(http.StatusNoContent)
}

// Session は現在のSessionを返す。未サインインでも成功する。
// GET /api/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(store.Session()))
}

// Me はサインイン中のユーザー情報を返す。
// GET /auth/me, GET /auth/profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}

	identity := store.Session().Identity
	if identity == nil {
		handleServiceError(w, model.NewNotAuthenticatedError())
		return
	}
	writeJSON(w, http.StatusOK, toIdentityResponse(identity))
}

// UpdateProfile はプロフィールを更新する。
// PUT /auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}

	var form validation.ProfileForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if errs := form.Validate(); errs != nil {
		handleServiceError(w, model.NewInvalidFormError(errs))
		return
	}

	identity, err := h.userService.UpdateProfile(r.Context(), store, user.ProfileInput{
		Name:  form.Name,
		Email: form.Email,
		Phone: form.Phone,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdentityResponse(identity))
}

// ChangePassword はパスワード変更を受け付ける。
// POST /auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}

	var form validation.PasswordForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if errs := form.Validate(); errs != nil {
		handleServiceError(w, model.NewInvalidFormError(errs))
		return
	}

	if err := h.userService.ChangePassword(r.Context(), store, form.CurrentPassword, form.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}
