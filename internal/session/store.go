package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hitoshi/supportdesk/internal/model"
)

// Store は1つのブラウザプロファイルの現在のSessionを保持する。
// 状態の変更はセッション操作からのみ行い、Exclusive で操作同士を直列化する。
type Store struct {
	persistence Persistence

	// opMu は操作全体（擬似レイテンシの待機を含む）を直列化する。
	opMu sync.Mutex

	// stateMu はidentityの読み書きを保護する。操作の待機中も読み取れる。
	stateMu  sync.RWMutex
	identity *model.Identity

	// restoreMu はRestore、Save、Clearを直列化し、restoredを保護する。
	restoreMu sync.Mutex
	restored  bool
}

// NewStore は空のStoreを生成する。Restoreを呼ぶまで未認証のまま。
func NewStore(persistence Persistence) *Store {
	return &Store{persistence: persistence}
}

// Restore はDurable SlotからIdentityを復元する。
// 復元が完了した後の呼び出しは何もしない。
// スロットが存在しない、または壊れている場合は未認証のまま完了とする。
// 読み込みに失敗した場合は未認証のまま未完了とし、次の呼び出しで再度読み込む。
// スロットへの書き込みは行わない。
func (s *Store) Restore(ctx context.Context) {
	s.restoreMu.Lock()
	defer s.restoreMu.Unlock()

	if s.restored {
		return
	}

	identity, err := s.persistence.Load(context.WithoutCancel(ctx))
	if err != nil {
		if errors.Is(err, ErrMalformedSlot) {
			slog.WarnContext(ctx, "session slot malformed, starting anonymous",
				slog.String("error", err.Error()),
			)
			s.restored = true
			return
		}
		slog.ErrorContext(ctx, "session restore failed, will retry",
			slog.String("error", err.Error()),
		)
		return
	}
	s.restored = true
	if identity == nil {
		return
	}

	s.stateMu.Lock()
	s.identity = identity
	s.stateMu.Unlock()
}

// markRestored はStoreの状態が確定したことを記録する。
// 以降のRestoreはスロットを読まない。
func (s *Store) markRestored() {
	s.restoreMu.Lock()
	s.restored = true
	s.restoreMu.Unlock()
}

// Session は現在のSessionを返す。返り値はコピーであり、変更してもStoreには影響しない。
func (s *Store) Session() model.Session {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	if s.identity == nil {
		return model.Session{}
	}
	identity := *s.identity
	return model.Session{Identity: &identity}
}

// Exclusive は他の操作と排他的にfnを実行する。
// セッション操作は再入不可であり、同一Storeに対する操作は1つずつ完了する。
func (s *Store) Exclusive(fn func() error) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return fn()
}

// Save はIdentityをスロットに永続化してから現在のSessionに設定する。
// 永続化に失敗した場合はSessionを変更しない。
// 未完了のRestoreはこの時点で完了とする。
func (s *Store) Save(ctx context.Context, identity model.Identity) error {
	s.restoreMu.Lock()
	defer s.restoreMu.Unlock()

	if err := s.persistence.Save(ctx, identity); err != nil {
		return err
	}

	s.stateMu.Lock()
	s.identity = &identity
	s.stateMu.Unlock()
	s.restored = true
	return nil
}

// Clear は現在のSessionを破棄してからスロットを削除する。
// スロットの削除に失敗してもメモリ上のSessionは未認証になる。
func (s *Store) Clear(ctx context.Context) error {
	s.restoreMu.Lock()
	defer s.restoreMu.Unlock()

	s.stateMu.Lock()
	s.identity = nil
	s.stateMu.Unlock()
	s.restored = true

	return s.persistence.Clear(ctx)
}
