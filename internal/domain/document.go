package domain

import "time"

// DocumentType names the tool that produced a document.
type DocumentType string

const (
	DocumentAIWriter    DocumentType = "ai-writer"
	DocumentSEOWriter   DocumentType = "seo-writer"
	DocumentCompliance  DocumentType = "compliance"
	DocumentTranslation DocumentType = "translation"
	DocumentTemplate    DocumentType = "template"
)

// Document is a piece of generated or edited content.
type Document struct {
	ID        string       `json:"_id"`
	Name      string       `json:"name"`
	Type      DocumentType `json:"type"`
	Content   string       `json:"content"`
	Size      int64        `json:"size"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt,omitempty"`
}
