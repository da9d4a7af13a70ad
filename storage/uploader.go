package storage

import (
	"context"
	"io"
)

// UploadResult описывает результат успешной загрузки файла.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader абстрагирует хранилище файлов (аватары, логотипы, фото пилотов).
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
