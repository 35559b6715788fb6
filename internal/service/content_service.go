package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
)

// AnalyzeInput is the compliance analysis request. All fields are required.
type AnalyzeInput struct {
	Content      string `json:"content"`
	DocumentID   string `json:"documentId"`
	AnalysisType string `json:"analysisType"`
}

// FixInput asks the backend to rewrite content resolving the given issues.
type FixInput struct {
	Content    string                   `json:"content"`
	DocumentID string                   `json:"documentId,omitempty"`
	Issues     []domain.ComplianceIssue `json:"issues,omitempty"`
}

type ComplianceService struct {
	client *apiclient.Client
}

func NewComplianceService(client *apiclient.Client) *ComplianceService {
	return &ComplianceService{client: client}
}

// Documents handles GET /compliance/documents.
func (s *ComplianceService) Documents(ctx context.Context) ([]domain.Document, error) {
	return apiclient.Call[[]domain.Document](ctx, s.client, apiclient.Request{Path: "/compliance/documents"})
}

// AnalyzeContent handles POST /compliance/analyze. Missing fields fail before
// any request is made.
func (s *ComplianceService) AnalyzeContent(ctx context.Context, in AnalyzeInput) (*domain.ComplianceReport, error) {
	if err := requireFields("content, documentId, analysisType required",
		field{"content", in.Content},
		field{"documentId", in.DocumentID},
		field{"analysisType", in.AnalysisType}); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.ComplianceReport](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/compliance/analyze",
		Body:   in,
	})
}

// Fix handles POST /compliance/fix.
func (s *ComplianceService) Fix(ctx context.Context, in FixInput) (*domain.ComplianceFix, error) {
	if err := requireFields("content required", field{"content", in.Content}); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.ComplianceFix](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/compliance/fix",
		Body:   in,
	})
}

// SEOInput is the article generation request.
type SEOInput struct {
	Topic    string   `json:"topic"`
	Keywords []string `json:"keywords,omitempty"`
	Tone     string   `json:"tone,omitempty"`
	Length   int      `json:"length,omitempty"`
}

type SEOService struct {
	client *apiclient.Client
}

func NewSEOService(client *apiclient.Client) *SEOService {
	return &SEOService{client: client}
}

// Keywords handles GET /seo/keywords?topic=.
func (s *SEOService) Keywords(ctx context.Context, topic string) ([]domain.SEOKeyword, error) {
	if err := requireFields("topic required", field{"topic", topic}); err != nil {
		return nil, err
	}
	return apiclient.Call[[]domain.SEOKeyword](ctx, s.client, apiclient.Request{
		Path:  "/seo/keywords",
		Query: url.Values{"topic": {topic}},
	})
}

// Generate handles POST /seo/generate.
func (s *SEOService) Generate(ctx context.Context, in SEOInput) (*domain.SEOArticle, error) {
	if err := requireFields("topic required", field{"topic", in.Topic}); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.SEOArticle](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/seo/generate",
		Body:   in,
	})
}

// TranslateInput is the translation request.
type TranslateInput struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage"`
}

type TranslationService struct {
	client *apiclient.Client
}

func NewTranslationService(client *apiclient.Client) *TranslationService {
	return &TranslationService{client: client}
}

// Translate handles POST /translation/translate.
func (s *TranslationService) Translate(ctx context.Context, in TranslateInput) (*domain.Translation, error) {
	if err := requireFields("text and targetLanguage required",
		field{"text", in.Text}, field{"targetLanguage", in.TargetLanguage}); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Translation](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/translation/translate",
		Body:   in,
	})
}

// History handles GET /translation/history.
func (s *TranslationService) History(ctx context.Context) ([]domain.Translation, error) {
	return apiclient.Call[[]domain.Translation](ctx, s.client, apiclient.Request{Path: "/translation/history"})
}

type HomepageService struct {
	client *apiclient.Client
}

func NewHomepageService(client *apiclient.Client) *HomepageService {
	return &HomepageService{client: client}
}

// Get handles GET /admin/homepage.
func (s *HomepageService) Get(ctx context.Context) (domain.HomepageContent, error) {
	return apiclient.Call[domain.HomepageContent](ctx, s.client, apiclient.Request{Path: "/admin/homepage"})
}

// Update handles PUT /admin/homepage.
func (s *HomepageService) Update(ctx context.Context, content domain.HomepageContent) (domain.HomepageContent, error) {
	return apiclient.Call[domain.HomepageContent](ctx, s.client, apiclient.Request{
		Method: http.MethodPut,
		Path:   "/admin/homepage",
		Body:   content,
	})
}
