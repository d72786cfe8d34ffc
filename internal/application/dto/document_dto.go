package dto

import "time"

// CreateDocumentInput datos del multipart /document ya leídos por el handler.
type CreateDocumentInput struct {
	Title       string
	Content     string
	Filename    string
	ContentType string
	Data        []byte
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PostedBy    string    `json:"posted_by"`
	Role        string    `json:"role"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
