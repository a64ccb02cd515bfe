// Package user はサインイン中のユーザーのプロフィール編集とパスワード変更を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/supportdesk/internal/clock"
	"github.com/hitoshi/supportdesk/internal/metrics"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/session"
)

// 操作名（メトリクスとログのラベル）
const (
	OpUpdateProfile  = "update_profile"
	OpChangePassword = "change_password"
)

// ServiceConfig はユーザーサービスの設定。
type ServiceConfig struct {
	ProfileDelay  time.Duration // プロフィール更新の擬似レイテンシ
	PasswordDelay time.Duration // パスワード変更の擬似レイテンシ
}

// DefaultServiceConfig はデフォルトのユーザーサービス設定を返す。
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ProfileDelay:  800 * time.Millisecond,
		PasswordDelay: 800 * time.Millisecond,
	}
}

// ProfileInput はプロフィール更新の入力値。
// Phoneが空の場合は現在の電話番号を引き継ぐ。
type ProfileInput struct {
	Name  string
	Email string
	Phone string
}

// Service はユーザー管理のサービス層。
type Service struct {
	delayer clock.Delayer
	metrics metrics.MetricsCollector
	config  ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(delayer clock.Delayer, collector metrics.MetricsCollector, config ServiceConfig) *Service {
	return &Service{
		delayer: delayer,
		metrics: collector,
		config:  config,
	}
}

// UpdateProfile は現在のIdentityに入力値をマージして再保存する。
// IDは変更しない。サインインしていない場合はNotAuthenticatedエラーを返す。
func (s *Service) UpdateProfile(ctx context.Context, store *session.Store, input ProfileInput) (*model.Identity, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	var updated model.Identity
	err := store.Exclusive(func() error {
		s.delayer.Delay(s.config.ProfileDelay)

		current := store.Session().Identity
		if current == nil {
			return model.NewNotAuthenticatedError()
		}
		if input.Name == "" || input.Email == "" {
			return model.NewValidationError("Name and email are required")
		}

		updated = model.Identity{
			ID:    current.ID,
			Name:  input.Name,
			Email: input.Email,
			Phone: current.Phone,
		}
		if input.Phone != "" {
			updated.Phone = input.Phone
		}
		if err := store.Save(ctx, updated); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		return nil
	})
	s.record(OpUpdateProfile, start, err)
	if err != nil {
		return nil, err
	}

	slog.Info("profile updated",
		slog.String("user_id", updated.ID),
	)
	return &updated, nil
}

// ChangePassword は現在のパスワードと新しいパスワードを受け付ける。
// 資格情報を保持していないため検証と待機のみを行い、セッションは変更しない。
// TODO: 認証バックエンド導入時に現在のパスワード照合と更新を実装する
func (s *Service) ChangePassword(ctx context.Context, store *session.Store, currentPassword, newPassword string) error {
	start := time.Now()

	err := store.Exclusive(func() error {
		s.delayer.Delay(s.config.PasswordDelay)

		if currentPassword == "" || newPassword == "" {
			return model.NewValidationError("Both current and new passwords are required")
		}
		return nil
	})
	s.record(OpChangePassword, start, err)
	if err != nil {
		return err
	}

	userID := ""
	if identity := store.Session().Identity; identity != nil {
		userID = identity.ID
	}
	slog.Info("password change accepted",
		slog.String("user_id", userID),
	)
	return nil
}

func (s *Service) record(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSessionOperation(op, metrics.ResultOf(err))
	s.metrics.RecordOperationLatency(op, time.Since(start))
}
