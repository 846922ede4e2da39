package documents

import "time"

// Document is a persisted medical record attachment. Every row is owned by
// exactly one user and references exactly one stored file until deleted.
type Document struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	FileName  string    `json:"fileName"`
	FilePath  string    `json:"filePath"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SentinelContent is persisted instead of extracted text when every
// strategy fails and the keep-unextracted policy is enabled.
const SentinelContent = "Failed to extract content"
