// Package model はドメインモデルを定義する。
package model

// Identity はサインイン中のユーザーを表す。
// IDは生成後に変更されない。Name、Email、Phoneはプロフィール更新でのみ変更される。
// JSON表現はDurable Slotの保存フォーマットと一致する。
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Session はブラウザプロファイル単位の認証状態を表す。
// IsAuthenticated は Identity の有無から導出し、独立した値としては保持しない。
type Session struct {
	Identity *Identity
}

// IsAuthenticated はIdentityが存在する場合にtrueを返す。
func (s Session) IsAuthenticated() bool {
	return s.Identity != nil
}
