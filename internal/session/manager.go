package session

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/supportdesk/internal/repository"
)

// ManagerConfig はManagerの設定を保持する。
type ManagerConfig struct {
	// IdleTTL はアクセスのないStoreをメモリから破棄するまでの時間。
	// スロットが状態の唯一の正であるため、破棄後のアクセスではRestoreで同じ状態に戻る。
	IdleTTL time.Duration
	// CleanupInterval は破棄対象の確認間隔。
	CleanupInterval time.Duration
}

// DefaultManagerConfig はデフォルトのManager設定を返す。
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		IdleTTL:         30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// managedStore はStoreと最終アクセス時刻を保持する。
type managedStore struct {
	store      *Store
	lastAccess time.Time
}

// Manager はプロファイルIDごとのStoreを管理する。
// 各Storeは初回アクセス時に生成され、その場でRestoreされる。
type Manager struct {
	repo   repository.SlotRepository
	config ManagerConfig

	mu     sync.Mutex
	stores map[string]*managedStore

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager は新しいManagerを生成する。
// バックグラウンドでアイドルStoreのクリーンアップを開始する。
func NewManager(repo repository.SlotRepository, config ManagerConfig) *Manager {
	m := &Manager{
		repo:   repo,
		config: config,
		stores: make(map[string]*managedStore),
		stopCh: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go m.cleanupLoop()
	}

	return m
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Get はprofileIDに対応するStoreを返す。
// 初回はStoreを生成し、ガードが評価される前にRestoreを完了させる。
func (m *Manager) Get(ctx context.Context, profileID string) *Store {
	m.mu.Lock()
	ms, ok := m.stores[profileID]
	if !ok {
		ms = &managedStore{
			store: NewStore(NewSlotPersistence(m.repo, profileID)),
		}
		m.stores[profileID] = ms
	}
	ms.lastAccess = time.Now()
	m.mu.Unlock()

	// 並行する初回アクセスはRestoreの完了を待つ。読み込み失敗時は次のGetで再試行する。
	ms.store.Restore(ctx)
	return ms.store
}

// New は新規発行したprofileIDのStoreを返す。
// 新しいプロファイルのスロットは存在しないため読み込みを行わず、Managerにも登録しない。
// 次のリクエストからはGetでスロットの内容が復元される。
func (m *Manager) New(profileID string) *Store {
	store := NewStore(NewSlotPersistence(m.repo, profileID))
	store.markRestored()
	return store
}

// Len は現在メモリ上にあるStoreの数を返す。
// テストおよびメトリクス用。
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// cleanupLoop はバックグラウンドでアイドルStoreを定期的に破棄する。
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(time.Now())
		case <-m.stopCh:
			return
		}
	}
}

// cleanup は最終アクセスからIdleTTLを超えたStoreを破棄する。
// 操作実行中のStoreは破棄しない。
func (m *Manager) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, ms := range m.stores {
		if now.Sub(ms.lastAccess) <= m.config.IdleTTL {
			continue
		}
		if !ms.store.opMu.TryLock() {
			continue
		}
		ms.store.opMu.Unlock()
		delete(m.stores, id)
	}
}
