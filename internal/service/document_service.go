package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// DocumentFilter narrows a document listing. Zero values are omitted.
type DocumentFilter struct {
	Search string
	Type   domain.DocumentType
	Page   int
	Limit  int
}

// DocumentInput is the create/update payload.
type DocumentInput struct {
	Name    string              `json:"name"`
	Type    domain.DocumentType `json:"type"`
	Content string              `json:"content"`
}

// Saver receives a downloaded file. The console streams it as an
// attachment, the CLI writes it to disk.
type Saver interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, name, contentType string, body io.Reader) error

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, name, contentType string, body io.Reader) error {
	return f(ctx, name, contentType, body)
}

type DocumentService struct {
	client *apiclient.Client
}

func NewDocumentService(client *apiclient.Client) *DocumentService {
	return &DocumentService{client: client}
}

// List handles GET /documents.
func (s *DocumentService) List(ctx context.Context, filter DocumentFilter) ([]domain.Document, error) {
	q := url.Values{}
	setIfPresent(q, "search", filter.Search)
	setIfPresent(q, "type", string(filter.Type))
	setPositive(q, "page", filter.Page)
	setPositive(q, "limit", filter.Limit)
	return apiclient.Call[[]domain.Document](ctx, s.client, apiclient.Request{Path: "/documents", Query: q})
}

// Get handles GET /documents/:id.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if err := requireID("document", id); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Document](ctx, s.client, apiclient.Request{Path: pathOf("/documents", id)})
}

// Create handles POST /documents.
func (s *DocumentService) Create(ctx context.Context, in DocumentInput) (*domain.Document, error) {
	if err := requireFields("name and content required",
		field{"name", in.Name}, field{"content", in.Content}); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Document](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/documents",
		Body:   in,
	})
}

// Update handles PUT /documents/:id.
func (s *DocumentService) Update(ctx context.Context, id string, in DocumentInput) (*domain.Document, error) {
	if err := requireID("document", id); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Document](ctx, s.client, apiclient.Request{
		Method: http.MethodPut,
		Path:   pathOf("/documents", id),
		Body:   in,
	})
}

// Delete handles DELETE /documents/:id.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := requireID("document", id); err != nil {
		return err
	}
	_, err := s.client.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: pathOf("/documents", id)})
	return err
}

// Download fetches GET /documents/:id/download and hands the body to saver.
// Without a token it fails before any request is made.
func (s *DocumentService) Download(ctx context.Context, id string, saver Saver) error {
	if err := requireID("document", id); err != nil {
		return err
	}
	token, err := s.client.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return apperrors.NewAuthError("sign in to download documents")
	}

	file, err := s.client.Download(ctx, apiclient.Request{Path: pathOf("/documents", id, "download")})
	if err != nil {
		return err
	}
	name := file.Name
	if name == "" {
		name = "document-" + id + ".docx"
	}
	return saver.Save(ctx, name, file.ContentType, bytes.NewReader(file.Body))
}
