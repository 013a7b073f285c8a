package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// UploadResult — итог загрузки объекта.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — хранилище скриншотов-доказательств. Ключи непрозрачны
// для остального кода; наружу отдаётся только публичный URL.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// EvidenceKey генерирует ключ для скриншота результата лобби.
func EvidenceKey(lobbyID int, ext string) string {
	return fmt.Sprintf("evidence/lobby-%d/%s%s", lobbyID, uuid.NewString(), ext)
}
