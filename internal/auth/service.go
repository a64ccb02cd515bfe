// Package auth はログイン、会員登録、ログアウトのセッション操作を提供する。
//
// バックエンドが存在しないため資格情報の照合は行わない。必須項目が揃っていれば
// 成功とみなし、Identityを生成してセッションとDurable Slotに保存する。
// 本番の認証契約とは異なるため、実バックエンド導入時に照合処理を追加すること。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/supportdesk/internal/clock"
	"github.com/hitoshi/supportdesk/internal/metrics"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/session"
)

// ログイン時に生成する固定Identityの値。
const (
	DemoUserID    = "user-1"
	DemoUserName  = "Client Test"
	DemoUserPhone = "+229 00000000"
)

// 操作名（メトリクスとログのラベル）
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
	OpClear    = "clear"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	LoginDelay    time.Duration // ログインの擬似レイテンシ
	RegisterDelay time.Duration // 会員登録の擬似レイテンシ
}

// DefaultServiceConfig はデフォルトの認証サービス設定を返す。
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		LoginDelay:    800 * time.Millisecond,
		RegisterDelay: 1000 * time.Millisecond,
	}
}

// RegisterInput は会員登録の入力値。Phoneは任意。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Service は認証に関するセッション操作を提供する。
// 状態は持たず、操作対象のsession.Storeを呼び出し側から受け取る。
type Service struct {
	delayer clock.Delayer
	metrics metrics.MetricsCollector
	config  ServiceConfig
	newID   func() (string, error)
}

// NewService はServiceを生成する。
func NewService(delayer clock.Delayer, collector metrics.MetricsCollector, config ServiceConfig) *Service {
	return &Service{
		delayer: delayer,
		metrics: collector,
		config:  config,
		newID:   newUserID,
	}
}

// Login はメールアドレスとパスワードでサインインする。
// どちらかが空の場合はValidationErrorを返し、セッションは変更しない。
// 成功時は固定IDのIdentityを生成してセッションとスロットに保存する。
func (s *Service) Login(ctx context.Context, store *session.Store, email, password string) (*model.Identity, error) {
	// 待機開始後はリクエストが切断されても効果を適用する
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	var identity model.Identity
	err := store.Exclusive(func() error {
		s.delayer.Delay(s.config.LoginDelay)

		if email == "" || password == "" {
			return model.NewValidationError("Email and password are required")
		}

		identity = model.Identity{
			ID:    DemoUserID,
			Name:  DemoUserName,
			Email: email,
			Phone: DemoUserPhone,
		}
		if err := store.Save(ctx, identity); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		return nil
	})
	s.record(OpLogin, start, err)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in",
		slog.String("user_id", identity.ID),
	)
	return &identity, nil
}

// Register は新しいIdentityを生成してサインインする。
// 名前、メールアドレス、パスワードのいずれかが空の場合はValidationErrorを返す。
// IDは呼び出しごとに一意な時刻順のIDを採番する。
func (s *Service) Register(ctx context.Context, store *session.Store, input RegisterInput) (*model.Identity, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	var identity model.Identity
	err := store.Exclusive(func() error {
		s.delayer.Delay(s.config.RegisterDelay)

		if input.Name == "" || input.Email == "" || input.Password == "" {
			return model.NewValidationError("All required fields must be filled")
		}

		id, err := s.newID()
		if err != nil {
			return fmt.Errorf("failed to generate user ID: %w", err)
		}
		identity = model.Identity{
			ID:    id,
			Name:  input.Name,
			Email: input.Email,
			Phone: input.Phone,
		}
		if err := store.Save(ctx, identity); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		return nil
	})
	s.record(OpRegister, start, err)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered",
		slog.String("user_id", identity.ID),
	)
	return &identity, nil
}

// Logout はセッションとスロットを破棄する。失敗しない。
// 未認証状態で呼び出しても未認証のまま終わる。
func (s *Service) Logout(ctx context.Context, store *session.Store) {
	s.clear(ctx, store, OpLogout)
}

// ClearLocalSession はローカルに保持されたセッションを明示的に破棄する。
// 効果はLogoutと同じで、メトリクスとログ上で区別する。
func (s *Service) ClearLocalSession(ctx context.Context, store *session.Store) {
	s.clear(ctx, store, OpClear)
}

func (s *Service) clear(ctx context.Context, store *session.Store, op string) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	var userID string
	store.Exclusive(func() error {
		if identity := store.Session().Identity; identity != nil {
			userID = identity.ID
		}
		if err := store.Clear(ctx); err != nil {
			// メモリ上のセッションは破棄済みのため、スロット削除の失敗はログのみ
			slog.Error("failed to clear session slot",
				slog.String("op", op),
				slog.String("error", err.Error()),
			)
		}
		return nil
	})
	s.record(op, start, nil)

	slog.Info("user logged out",
		slog.String("op", op),
		slog.String("user_id", userID),
	)
}

// record は操作の結果と所要時間をメトリクスに記録する。
func (s *Service) record(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSessionOperation(op, metrics.ResultOf(err))
	s.metrics.RecordOperationLatency(op, time.Since(start))
}

// newUserID は時刻順に並ぶ一意なユーザーIDを生成する。
func newUserID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return "user-" + id.String(), nil
}
