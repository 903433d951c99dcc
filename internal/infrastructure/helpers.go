package infrastructure

import (
	"strings"

	"github.com/DRSN-tech/onlinestore/pkg/e"
)

// imageExtensions - форматы изображений товаров, которые принимает хранилище.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ImageExtension возвращает расширение объекта для MIME-типа изображения.
// Параметры типа (например, "; charset=") отбрасываются.
func ImageExtension(mime string) (string, error) {
	mime, _, _ = strings.Cut(mime, ";")
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(mime))]
	if !ok {
		return "", e.ErrUnsupportedMediaType
	}

	return ext, nil
}
