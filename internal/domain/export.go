package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportRecord describes one produced PDF. It is what the export log stores;
// the document bytes are never persisted there.
type ExportRecord struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Pages     int       `json:"pages"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type ExportResult struct {
	Record ExportRecord
	HTML   string
	PDF    []byte
}
