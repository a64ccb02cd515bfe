package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// FileSlotRepo はディレクトリ配下の1キー1ファイルで値を保持するスロットリポジトリ。
// 書き込みは一時ファイルへの書き出しとrenameで行い、読み手が途中状態を見ないようにする。
type FileSlotRepo struct {
	dir string
}

// NewFileSlotRepo はFileSlotRepoを生成する。ディレクトリが存在しない場合は作成する。
func NewFileSlotRepo(dir string) (*FileSlotRepo, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}
	return &FileSlotRepo{dir: dir}, nil
}

// Get は指定キーのファイル内容を返す。ファイルが存在しない場合はnil, nilを返す。
func (r *FileSlotRepo) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(r.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return data, nil
}

// Put は指定キーのファイルをアトミックに置き換える。
func (r *FileSlotRepo) Put(ctx context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(r.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp slot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close slot file: %w", err)
	}
	if err := os.Rename(tmpName, r.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace slot file: %w", err)
	}
	return nil
}

// Delete は指定キーのファイルを削除する。
func (r *FileSlotRepo) Delete(ctx context.Context, key string) error {
	err := os.Remove(r.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// path はキーをエスケープしたファイルパスを返す。
// "/" や ".." を含むキーでもディレクトリ外に出ない。
func (r *FileSlotRepo) path(key string) string {
	return filepath.Join(r.dir, url.PathEscape(key)+".json")
}

// compile-time interface check
var _ SlotRepository = (*FileSlotRepo)(nil)
