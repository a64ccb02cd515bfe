// Package session はブラウザプロファイル単位の認証状態（Session）と
// その永続化（Durable Slot）を管理する。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/repository"
)

// SlotName はDurable Slotのキー名。プロファイルIDと組み合わせて使用する。
const SlotName = "user"

// ErrMalformedSlot はスロットの内容がIdentityとして解釈できない場合のエラー。
var ErrMalformedSlot = errors.New("malformed session slot")

// Persistence はIdentityを保存・復元する永続化インターフェース。
// ブラウザのlocalStorageに相当し、実装を差し替えてもセッション操作には影響しない。
type Persistence interface {
	// Load は保存済みIdentityを返す。未保存の場合はnil, nilを返す。
	// 内容が壊れている場合はErrMalformedSlotをラップしたエラーを返す。
	Load(ctx context.Context) (*model.Identity, error)
	// Save はIdentityを保存する。
	Save(ctx context.Context, identity model.Identity) error
	// Clear は保存済みIdentityを削除する。
	Clear(ctx context.Context) error
}

// slotPersistence はSlotRepositoryの1キーにIdentityのJSONを保存するPersistence実装。
type slotPersistence struct {
	repo repository.SlotRepository
	key  string
}

// NewSlotPersistence はprofileIDで区切られたスロットを使用するPersistenceを生成する。
func NewSlotPersistence(repo repository.SlotRepository, profileID string) Persistence {
	return &slotPersistence{
		repo: repo,
		key:  SlotKey(profileID),
	}
}

// SlotKey はプロファイルIDに対応するスロットキーを返す。
func SlotKey(profileID string) string {
	return profileID + ":" + SlotName
}

// Load はスロットからIdentityを読み込む。
func (p *slotPersistence) Load(ctx context.Context) (*model.Identity, error) {
	data, err := p.repo.Get(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read session slot: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSlot, err)
	}
	// JSONとしては正しくても "null" やIDなしのオブジェクトはIdentityとみなさない
	if identity.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedSlot)
	}
	return &identity, nil
}

// Save はIdentityをJSONとしてスロットに書き込む。
func (p *slotPersistence) Save(ctx context.Context, identity model.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := p.repo.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("failed to write session slot: %w", err)
	}
	return nil
}

// Clear はスロットを削除する。
func (p *slotPersistence) Clear(ctx context.Context) error {
	if err := p.repo.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("failed to clear session slot: %w", err)
	}
	return nil
}
