package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/service"
)

// maxPhotosPerItem сколько фотографий принимается в одной форме.
const maxPhotosPerItem = 10

// openPhotos открывает файлы из поля формы. Вызывающий обязан вызвать close.
func openPhotos(c *gin.Context, field string) ([]service.PhotoUpload, func(), error) {
	noop := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, apperror.Validation("ожидается multipart/form-data")
		}
		return nil, noop, requestBodyError(err)
	}

	headers := form.File[field]
	if len(headers) > maxPhotosPerItem {
		return nil, noop, apperror.Validation("%s: не больше %d файлов", field, maxPhotosPerItem)
	}

	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]service.PhotoUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, apperror.Validation("%s: не удалось прочитать файл %q", field, fh.Filename)
		}
		files = append(files, f)
		uploads = append(uploads, service.PhotoUpload{Name: fh.Filename, Reader: f})
	}
	return uploads, closeAll, nil
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

// requestBodyError отличает превышение лимита тела от прочих ошибок чтения.
func requestBodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.Validation("запрос больше %d байт", tooLarge.Limit)
	}
	return apperror.Validation("некорректная форма: %v", err)
}
