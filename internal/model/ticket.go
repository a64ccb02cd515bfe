// Package model はドメインモデルを定義する。
package model

import "time"

// TicketStatus はチケットの対応状況を表す。
type TicketStatus string

const (
	// TicketStatusOpen は受付済みで未着手の状態。
	TicketStatusOpen TicketStatus = "open"
	// TicketStatusInProgress は対応中の状態。
	TicketStatusInProgress TicketStatus = "in_progress"
	// TicketStatusResolved は解決済みの状態。
	TicketStatusResolved TicketStatus = "resolved"
	// TicketStatusClosed はクローズされた状態。
	TicketStatusClosed TicketStatus = "closed"
)

// TicketPriority はチケットの優先度を表す。
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Ticket はサポートチケットを表す。
// OwnerIDが空のチケットは全クライアントに公開されるサンプルデータ。
type Ticket struct {
	ID          string
	OwnerID     string
	Subject     string
	Category    string
	Priority    TicketPriority
	Status      TicketStatus
	Description string
	CreatedAt   time.Time
	LastUpdate  time.Time
	Messages    []TicketMessage
}

// VisibleTo は指定ユーザーがチケットを閲覧できるかを返す。
func (t *Ticket) VisibleTo(userID string) bool {
	return t.OwnerID == "" || t.OwnerID == userID
}

// TicketMessage はチケット上のやり取り1件を表す。
type TicketMessage struct {
	ID        int
	UserID    string
	UserName  string
	Content   string
	Timestamp time.Time
	IsStaff   bool
}

// TicketFilter はチケット一覧の絞り込み条件を表す。
// Statusが空の場合は全ステータスを対象とする。
// ViewerIDのユーザーが閲覧できるチケットのみを返す。
type TicketFilter struct {
	ViewerID string
	Search   string
	Status   TicketStatus
}

// DashboardStats はクライアントダッシュボードの集計値を表す。
type DashboardStats struct {
	TotalTickets        int
	OpenTickets         int
	ResolvedTickets     int
	ClosedTickets       int
	AverageResponseTime string
	SatisfactionRate    string
}
