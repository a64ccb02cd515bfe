package repository

import (
	"context"
	"sync"
)

// MemorySlotRepo はプロセス内メモリに値を保持するスロットリポジトリ。
// プロセス終了で内容は失われる。テストおよび SLOT_BACKEND=memory で使用する。
type MemorySlotRepo struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemorySlotRepo はMemorySlotRepoを生成する。
func NewMemorySlotRepo() *MemorySlotRepo {
	return &MemorySlotRepo{values: make(map[string][]byte)}
}

// Get は指定キーの値のコピーを返す。
func (r *MemorySlotRepo) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put は値のコピーを保存する。
func (r *MemorySlotRepo) Put(ctx context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	r.mu.Lock()
	r.values[key] = v
	r.mu.Unlock()
	return nil
}

// Delete は指定キーを削除する。
func (r *MemorySlotRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.values, key)
	r.mu.Unlock()
	return nil
}

// compile-time interface check
var _ SlotRepository = (*MemorySlotRepo)(nil)
