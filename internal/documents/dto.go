package documents

import "time"

// DocumentResponse is the outward-facing representation used by list and
// create responses. Extracted content and the server-side file path are
// deliberately omitted to keep payloads small and paths private.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Date      string    `json:"date"`
	Tags      []string  `json:"tags"`
	FileName  string    `json:"fileName"`
	CreatedAt time.Time `json:"createdAt"`
}

// DocumentDetail additionally exposes the extracted content for single-
// document reads.
type DocumentDetail struct {
	DocumentResponse
	Content string `json:"content"`
}

func toResponse(doc Document) DocumentResponse {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return DocumentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Category:  doc.Category,
		Date:      doc.Date.Format(dateLayout),
		Tags:      tags,
		FileName:  doc.FileName,
		CreatedAt: doc.CreatedAt,
	}
}

func toDetail(doc Document) DocumentDetail {
	return DocumentDetail{
		DocumentResponse: toResponse(doc),
		Content:          doc.Content,
	}
}
