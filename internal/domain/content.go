package domain

import (
	"encoding/json"
	"time"
)

// ComplianceIssue is one finding of a compliance analysis.
type ComplianceIssue struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
}

// ComplianceReport is the result of analyzing a document.
type ComplianceReport struct {
	DocumentID   string            `json:"documentId"`
	AnalysisType string            `json:"analysisType"`
	Score        float64           `json:"score"`
	Summary      string            `json:"summary,omitempty"`
	Issues       []ComplianceIssue `json:"issues"`
}

// ComplianceFix is the corrected content returned by the fixer.
type ComplianceFix struct {
	DocumentID string `json:"documentId,omitempty"`
	Content    string `json:"content"`
	Changes    int    `json:"changes,omitempty"`
}

// Translation is one translation request and its result.
type Translation struct {
	ID             string    `json:"_id,omitempty"`
	SourceText     string    `json:"sourceText"`
	TranslatedText string    `json:"translatedText"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// SEOKeyword is a keyword suggestion.
type SEOKeyword struct {
	Keyword    string  `json:"keyword"`
	Volume     int     `json:"volume"`
	Difficulty float64 `json:"difficulty"`
}

// SEOArticle is a generated SEO article.
type SEOArticle struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Content         string   `json:"content"`
	Keywords        []string `json:"keywords,omitempty"`
	DocumentID      string   `json:"documentId,omitempty"`
}

// HomepageContent is the marketing page content managed by admins, keyed by
// section (hero, features, pricing, faq, testimonials). Sections stay raw; the
// console passes them through untouched.
type HomepageContent map[string]json.RawMessage

// Pagination describes a 1-indexed page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is a paginated listing.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
