// Package ticket はクライアントポータルのサポートチケット操作を提供する。
//
// チケットはモックデータであり、担当者の割り当てやステータス遷移などの業務ルールは持たない。
package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/hitoshi/supportdesk/internal/clock"
	"github.com/hitoshi/supportdesk/internal/metrics"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/repository"
	"github.com/hitoshi/supportdesk/internal/security"
	"github.com/hitoshi/supportdesk/internal/validation"
)

// ダッシュボードの固定表示値。応答時間と満足度は集計元がないため固定値を返す。
const (
	AverageResponseTime = "2h 15min"
	SatisfactionRate    = "95%"
	recentTicketLimit   = 3
)

// StatusAll はステータス絞り込みなしを表すクエリ値。
const StatusAll = "all"

// ServiceConfig はチケットサービスの設定。
type ServiceConfig struct {
	Delay time.Duration // 作成とメッセージ送信の擬似レイテンシ
}

// DefaultServiceConfig はデフォルトのチケットサービス設定を返す。
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{Delay: 1000 * time.Millisecond}
}

// Dashboard はダッシュボード表示用の集計と最近のチケット。
type Dashboard struct {
	Stats  model.DashboardStats
	Recent []model.Ticket
}

// Service はチケット操作のサービス層。
type Service struct {
	repo      repository.TicketRepository
	sanitizer security.TextSanitizer
	delayer   clock.Delayer
	metrics   metrics.MetricsCollector
	config    ServiceConfig
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.TicketRepository,
	sanitizer security.TextSanitizer,
	delayer clock.Delayer,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		delayer:   delayer,
		metrics:   collector,
		config:    config,
		now:       time.Now,
	}
}

// ParseStatusFilter はクエリのステータス値を検証する。
// 空文字列と"all"は絞り込みなしとして空のステータスを返す。
func ParseStatusFilter(raw string) (model.TicketStatus, error) {
	switch raw {
	case "", StatusAll:
		return "", nil
	}
	status := model.TicketStatus(raw)
	switch status {
	case model.TicketStatusOpen, model.TicketStatusInProgress, model.TicketStatusResolved, model.TicketStatusClosed:
		return status, nil
	}
	return "", model.NewInvalidFilterError(raw)
}

// List は件名検索とステータスで絞り込んだチケット一覧を返す。
func (s *Service) List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error) {
	tickets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Get はチケット詳細を返す。
// 存在しない、またはviewerIDが閲覧できない場合はTicketNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, viewerID, id string) (*model.Ticket, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if t == nil || !t.VisibleTo(viewerID) {
		return nil, model.NewTicketNotFoundError(id)
	}
	return t, nil
}

// Create は新しいチケットを受付状態で作成する。
// 説明文は最初のメッセージとしても記録する。
func (s *Service) Create(ctx context.Context, author model.Identity, form validation.TicketForm) (*model.Ticket, error) {
	ctx = context.WithoutCancel(ctx)
	s.delayer.Delay(s.config.Delay)

	form.Subject = s.sanitizer.Sanitize(form.Subject)
	form.Description = s.sanitizer.Sanitize(form.Description)
	if errs := form.Validate(); errs != nil {
		return nil, model.NewInvalidFormError(errs)
	}

	now := s.now()
	t := &model.Ticket{
		OwnerID:     author.ID,
		Subject:     form.Subject,
		Category:    form.Category,
		Priority:    model.TicketPriority(form.Priority),
		Status:      model.TicketStatusOpen,
		Description: form.Description,
		CreatedAt:   now,
		LastUpdate:  now,
		Messages: []model.TicketMessage{
			{
				ID:        1,
				UserID:    author.ID,
				UserName:  author.Name,
				Content:   form.Description,
				Timestamp: now,
			},
		},
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTicketCreated()
	}
	slog.Info("ticket created",
		slog.String("ticket_id", t.ID),
		slog.String("user_id", author.ID),
	)
	return t, nil
}

// AddMessage はチケットにクライアントからのメッセージを追加する。
// 空白のみのメッセージはValidationErrorを返す。
func (s *Service) AddMessage(ctx context.Context, author model.Identity, ticketID, content string) (*model.Ticket, error) {
	ctx = context.WithoutCancel(ctx)
	s.delayer.Delay(s.config.Delay)

	content = s.sanitizer.Sanitize(content)
	if content == "" {
		return nil, model.NewValidationError("Message cannot be empty")
	}

	// 所有者は作成後に変わらないため、追加前の確認で十分
	if _, err := s.Get(ctx, author.ID, ticketID); err != nil {
		return nil, err
	}

	t, err := s.repo.AppendMessage(ctx, ticketID, model.TicketMessage{
		UserID:    author.ID,
		UserName:  author.Name,
		Content:   content,
		Timestamp: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add message: %w", err)
	}
	if t == nil {
		return nil, model.NewTicketNotFoundError(ticketID)
	}

	slog.Info("ticket message added",
		slog.String("ticket_id", ticketID),
		slog.String("user_id", author.ID),
	)
	return t, nil
}

// Dashboard はviewerIDが閲覧できるチケットのステータス別件数と最近更新されたチケットを返す。
func (s *Service) Dashboard(ctx context.Context, viewerID string) (*Dashboard, error) {
	tickets, err := s.repo.List(ctx, model.TicketFilter{ViewerID: viewerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	stats := model.DashboardStats{
		TotalTickets:        len(tickets),
		AverageResponseTime: AverageResponseTime,
		SatisfactionRate:    SatisfactionRate,
	}
	for _, t := range tickets {
		switch t.Status {
		case model.TicketStatusOpen, model.TicketStatusInProgress:
			stats.OpenTickets++
		case model.TicketStatusResolved:
			stats.ResolvedTickets++
		case model.TicketStatusClosed:
			stats.ClosedTickets++
		}
	}

	// repo.Listは最終更新日時の降順
	recent := slices.Clone(tickets[:min(len(tickets), recentTicketLimit)])
	return &Dashboard{Stats: stats, Recent: recent}, nil
}
