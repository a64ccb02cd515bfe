// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/supportdesk/internal/model"
)

// SlotRepository はDurable Slotを保持するキーバリューストアの永続化インターフェース。
// 1キーに1つの値を保持し、有効期限や署名は持たない。
type SlotRepository interface {
	// Get は指定キーの値を取得する。キーが存在しない場合はnil, nilを返す。
	Get(ctx context.Context, key string) ([]byte, error)

	// Put は指定キーの値を上書き保存する。
	Put(ctx context.Context, key string, value []byte) error

	// Delete は指定キーを削除する。キーが存在しない場合もエラーにしない。
	Delete(ctx context.Context, key string) error
}

// TicketRepository はサポートチケットの永続化インターフェース。
type TicketRepository interface {
	// List は条件に一致するチケットを最終更新日時の降順で返す。
	List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error)

	// FindByID はIDでチケットを取得する。存在しない場合はnil, nilを返す。
	FindByID(ctx context.Context, id string) (*model.Ticket, error)

	// Create はチケットを保存する。IDが空の場合は採番して設定する。
	Create(ctx context.Context, ticket *model.Ticket) error

	// AppendMessage はチケットにメッセージを追加し、最終更新日時をメッセージの日時に更新する。
	// メッセージIDはチケット内で採番する。チケットが存在しない場合はnil, nilを返す。
	AppendMessage(ctx context.Context, ticketID string, msg model.TicketMessage) (*model.Ticket, error)
}
