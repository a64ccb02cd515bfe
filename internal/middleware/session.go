// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/hitoshi/supportdesk/internal/session"
)

// ProfileCookieName はブラウザプロファイルを識別するCookie名。
const ProfileCookieName = "profile_id"

// profileIDBytes はプロファイルIDの乱数バイト数（16進で32文字）。
const profileIDBytes = 16

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	storeContextKey         = contextKey("session_store")
	profileIDContextKey     = contextKey("profile_id")
	profileIssuedContextKey = contextKey("profile_issued")
)

// StoreProvider はプロファイルIDに対応するsession.Storeを返すインターフェース。
// session.Managerが実装する。
type StoreProvider interface {
	// Get は既存プロファイルの復元済みStoreを返す。
	Get(ctx context.Context, profileID string) *session.Store
	// New はこのリクエストで発行したプロファイルの空のStoreを返す。
	New(profileID string) *session.Store
}

var _ StoreProvider = (*session.Manager)(nil)

// ProfileCookieConfig はプロファイルCookieの属性。
type ProfileCookieConfig struct {
	Domain string
	Secure bool
	MaxAge int // 秒
}

// NewSessionMiddleware はプロファイルCookieからブラウザプロファイルを特定し、
// 復元済みのsession.Storeをリクエストコンテキストに注入する。
// Cookieが存在しない、または形式が不正な場合は新しいプロファイルIDを発行する。
// 発行したプロファイルは未認証が確定しているため、スロットを読まずに空のStoreを使う。
// 認証状態の判定は行わず、未認証リクエストもそのまま通過させる。
func NewSessionMiddleware(provider StoreProvider, cookieCfg ProfileCookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID := ""
			if cookie, err := r.Cookie(ProfileCookieName); err == nil && validProfileID(cookie.Value) {
				profileID = cookie.Value
			}

			issued := profileID == ""
			if issued {
				id, err := newProfileID()
				if err != nil {
					WriteInternalServerError(w)
					return
				}
				profileID = id
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookieName,
					Value:    profileID,
					Path:     "/",
					Domain:   cookieCfg.Domain,
					MaxAge:   cookieCfg.MaxAge,
					HttpOnly: true,
					Secure:   cookieCfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			var store *session.Store
			if issued {
				store = provider.New(profileID)
			} else {
				store = provider.Get(r.Context(), profileID)
			}

			ctx := context.WithValue(r.Context(), profileIDContextKey, profileID)
			ctx = context.WithValue(ctx, profileIssuedContextKey, issued)
			ctx = context.WithValue(ctx, storeContextKey, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreFromContext はリクエストコンテキストからsession.Storeを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func StoreFromContext(ctx context.Context) (*session.Store, error) {
	store, ok := ctx.Value(storeContextKey).(*session.Store)
	if !ok || store == nil {
		return nil, fmt.Errorf("session store not found in context")
	}
	return store, nil
}

// ContextWithStore はコンテキストにsession.Storeを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithStore(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, storeContextKey, store)
}

// ProfileIDFromContext はリクエストコンテキストからプロファイルIDを取得する。
func ProfileIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(profileIDContextKey).(string)
	return id
}

// profileIssuedFromContext はプロファイルIDがこのリクエストで発行されたものかを返す。
func profileIssuedFromContext(ctx context.Context) bool {
	issued, _ := ctx.Value(profileIssuedContextKey).(bool)
	return issued
}

// UserIDFromContext はサインイン中のユーザーIDを返す。
// 未サインインまたはStoreがない場合はエラーを返す。
func UserIDFromContext(ctx context.Context) (string, error) {
	store, err := StoreFromContext(ctx)
	if err != nil {
		return "", err
	}
	identity := store.Session().Identity
	if identity == nil {
		return "", fmt.Errorf("user ID not found in context")
	}
	return identity.ID, nil
}

func newProfileID() (string, error) {
	b := make([]byte, profileIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate profile ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func validProfileID(v string) bool {
	if len(v) != profileIDBytes*2 {
		return false
	}
	_, err := hex.DecodeString(v)
	return err == nil
}
