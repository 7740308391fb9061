package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/campus-lostfound/internal/logger"
)

// ErrTooLarge файл больше допустимого размера.
var ErrTooLarge = errors.New("storage: файл превышает допустимый размер")

// ErrUnsupportedType содержимое не является поддерживаемым изображением.
var ErrUnsupportedType = errors.New("storage: неподдерживаемый тип файла")

// Разрешённые типы по магическим байтам
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// SavedPhoto результат сохранения: путь на диске, публичный URL и перцептивный хеш.
type SavedPhoto struct {
	RelativePath string
	URL          string
	PHash        *string
	Size         int64
}

// PhotoStorage отвечает за файловое хранилище фотографий вещей.
type PhotoStorage struct {
	rootPath       string
	urlPrefix      string
	maxUploadBytes int64
}

// NewPhotoStorage создаёт файловое хранилище.
func NewPhotoStorage(rootPath, urlPrefix string, maxUploadMB int64) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PhotoStorage{
		rootPath:       rootPath,
		urlPrefix:      strings.TrimRight(urlPrefix, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// MaxUploadBytes лимит одного файла.
func (s *PhotoStorage) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// DetectImage определяет тип по первым байтам и возвращает расширение с точкой.
func DetectImage(head []byte) (string, error) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", ErrUnsupportedType
	}
	if !allowedMimeTypes[kind.MIME.Value] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, kind.MIME.Value)
	}
	return "." + kind.Extension, nil
}

// Save проверяет, что поток является изображением, атомарно пишет его на диск
// в каталог вещи и считает перцептивный хеш. Ошибка хеширования не мешает сохранению.
func (s *PhotoStorage) Save(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*SavedPhoto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrUnsupportedType
	}
	ext, err := DetectImage(head)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.rootPath, ownerID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог: %w", err)
	}

	fileName := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	targetPath := filepath.Join(dir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return nil, ErrTooLarge
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	relative := filepath.Join(ownerID.String(), fileName)
	saved := &SavedPhoto{RelativePath: relative, URL: s.URL(relative), Size: written}

	if hash, err := hashFile(targetPath); err != nil {
		logger.WithComponent("storage").WithError(err).WithField("path", relative).Warn("перцептивный хеш не посчитан")
	} else {
		saved.PHash = &hash
	}

	return saved, nil
}

// URL публичный адрес файла для относительного пути.
func (s *PhotoStorage) URL(relativePath string) string {
	return path.Join(s.urlPrefix, filepath.ToSlash(relativePath))
}

// Delete удаляет файл из хранилища.
func (s *PhotoStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, filepath.Clean("/"+relativePath))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func hashFile(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return PerceptualHash(f)
}
