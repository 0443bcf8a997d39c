// Package upload はユーザーがアップロードした画像ファイルの検証と保存を提供する。
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions は受け付ける画像拡張子（小文字、ドットなし）。
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
	"gif":  true,
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	separators  = regexp.MustCompile(`[\s/\\]+`)
)

// Store はアップロードディレクトリへの画像保存を行う。
type Store struct {
	dir string
}

// NewStore はStoreを生成する。ディレクトリは起動時に EnsureDir で作成しておくこと。
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir は保存先ディレクトリを返す。
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir は保存先ディレクトリを作成する。既に存在する場合は何もしない。
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}
	return nil
}

// Exists は保存先ディレクトリが存在するかを返す。
func (s *Store) Exists() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// Accept はファイルを検証して保存し、保存先のパスを返す。
// 拡張子が許可されていないファイルは写真なしとして扱い、ok=falseでエラーは返さない。
// 拡張子は元のファイル名で判定し、保存ファイル名は "<uuid>_<サニタイズ済み本体>.<小文字の拡張子>"
// （本体が空になる場合は "<uuid>.<拡張子>"）で、保存先ディレクトリの外には出ない。
func (s *Store) Accept(fh *multipart.FileHeader) (path string, ok bool, err error) {
	if fh == nil {
		return "", false, nil
	}
	stem, ext, ok := splitExtension(fh.Filename)
	if !ok {
		return "", false, nil
	}

	name := uuid.New().String()
	if stem = Sanitize(stem); stem != "" {
		name += "_" + stem
	}
	name += "." + ext

	src, err := fh.Open()
	if err != nil {
		return "", false, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	path = filepath.Join(s.dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", false, fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", false, fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", false, fmt.Errorf("failed to close upload file: %w", err)
	}

	slog.Debug("photo uploaded",
		slog.String("path", path),
		slog.Int64("size", fh.Size),
	)

	return path, true, nil
}

// AllowedExtension はファイル名の拡張子が許可された画像形式かどうかを大文字小文字を区別せずに判定する。
func AllowedExtension(filename string) bool {
	_, _, ok := splitExtension(filename)
	return ok
}

// splitExtension はファイル名を本体と小文字の拡張子に分け、拡張子が許可されているかを返す。
func splitExtension(filename string) (stem, ext string, ok bool) {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return "", "", false
	}
	ext = strings.ToLower(filename[i+1:])
	if !allowedExtensions[ext] {
		return "", "", false
	}
	return filename[:i], ext, true
}

// Sanitize はファイル名からパス区切りと安全でない文字を取り除く。
// 空白とパス区切りは "_" に置き換え、先頭・末尾の "." と "_" は削除する。
func Sanitize(filename string) string {
	name := separators.ReplaceAllString(filename, "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
