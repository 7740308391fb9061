package storage

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
)

// PerceptualHash декодирует изображение и возвращает pHash в строковом виде ("p:…").
// Хеш хранится вместе с фото и в оценку совпадений не входит.
func PerceptualHash(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("storage: декодирование изображения: %w", err)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("storage: phash: %w", err)
	}
	return hash.ToString(), nil
}
