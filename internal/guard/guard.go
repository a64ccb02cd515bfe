// Package guard はセッション状態に基づいてルートへの進入可否を判定する。
//
// 各ポリシーはルート進入ごとに1回だけ評価され、リダイレクト先を高々1つ返す。
// リダイレクト先は反対側のポリシーで保護されないため、リダイレクトはループしない。
package guard

import "github.com/hitoshi/supportdesk/internal/model"

// リダイレクト先
const (
	HomePath  = "/"
	LoginPath = "/auth/login"
)

// State はガードから見たセッション状態。
type State int

const (
	// Anonymous はIdentityを持たない状態。
	Anonymous State = iota
	// Authenticated はIdentityを持つ状態。
	Authenticated
)

// String はログとメトリクス用の状態名を返す。
func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// StateOf はSessionからガード状態を導出する。
func StateOf(sess model.Session) State {
	if sess.IsAuthenticated() {
		return Authenticated
	}
	return Anonymous
}

// Policy はルート領域ごとの進入ポリシー。
type Policy string

const (
	// GuestOnly はサインイン済みのユーザーをホームへ戻す（ログイン、会員登録）。
	GuestOnly Policy = "guest_only"
	// RequireAuth は未サインインのユーザーをログインページへ送る（プロフィール、クライアントポータル）。
	RequireAuth Policy = "require_auth"
)

// Decision はガード評価の結果。Allowがfalseの場合はRedirectToへ遷移する。
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Evaluate はポリシーと状態から進入可否を判定する。
func Evaluate(policy Policy, state State) Decision {
	switch policy {
	case GuestOnly:
		if state == Authenticated {
			return Decision{RedirectTo: HomePath}
		}
	case RequireAuth:
		if state == Anonymous {
			return Decision{RedirectTo: LoginPath}
		}
	}
	return Decision{Allow: true}
}
