package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

type tokenFunc func() string

func (f tokenFunc) Token(context.Context) (string, error) { return f(), nil }

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Auth   string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recorded
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeBackend) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeBackend) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newBackend(t *testing.T, token string, respond func(w http.ResponseWriter, r *http.Request)) (*Set, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{respond: respond}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &rec.Body)
			}
		}
		fb.mu.Lock()
		fb.requests = append(fb.requests, rec)
		fb.mu.Unlock()
		fb.respond(w, r)
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(apiclient.Options{BaseURL: srv.URL, HTTPClient: srv.Client()}).
		WithTokenSource(tokenFunc(func() string { return token }))
	return NewSet(client), fb
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func TestLoginReturnsSessionWithPrincipal(t *testing.T) {
	set, fb := newBackend(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"token": "tok", "user": map[string]any{"_id": "u1", "name": "Ada", "email": "ada@example.com"}})
	})

	sess, err := set.Auth.Login(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, domain.PrincipalUser, sess.Principal.Kind)
	assert.Equal(t, "Ada", sess.Principal.DisplayName())

	req := fb.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/users/login", req.Path)
	assert.Equal(t, "ada@example.com", req.Body["email"])
}

func TestAdminLoginAndLogoutUseTokenOverride(t *testing.T) {
	set, fb := newBackend(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/login" {
			writeData(w, map[string]any{"token": "adm", "admin": map[string]any{"_id": "a1", "name": "Root"}})
			return
		}
		writeData(w, nil)
	})

	sess, err := set.AdminAuth.Login(context.Background(), domain.Credentials{Email: "root@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.PrincipalAdmin, sess.Principal.Kind)

	require.NoError(t, set.AdminAuth.Logout(context.Background(), sess.Token))
	assert.Equal(t, "/admin/logout", fb.last().Path)
	assert.Equal(t, "Bearer adm", fb.last().Auth)
}

func TestLoginRejectsBlankCredentialsLocally(t *testing.T) {
	set, fb := newBackend(t, "", func(w http.ResponseWriter, r *http.Request) { writeData(w, nil) })

	_, err := set.Auth.Login(context.Background(), domain.Credentials{Email: "x@example.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, fb.count())
}

func TestDownloadWithoutTokenFailsWithoutRequest(t *testing.T) {
	set, fb := newBackend(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("binary"))
	})

	called := false
	err := set.Documents.Download(context.Background(), "doc-1", SaverFunc(func(context.Context, string, string, io.Reader) error {
		called = true
		return nil
	}))
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
	assert.False(t, called)
	assert.Zero(t, fb.count())
}

func TestDownloadHandsBodyToSaver(t *testing.T) {
	set, fb := newBackend(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Header().Set("Content-Disposition", `attachment; filename="report.docx"`)
		_, _ = w.Write([]byte("PK-binary"))
	})

	var gotName, gotBody string
	err := set.Documents.Download(context.Background(), "doc 1", SaverFunc(func(_ context.Context, name, _ string, body io.Reader) error {
		gotName = name
		raw, err := io.ReadAll(body)
		gotBody = string(raw)
		return err
	}))
	require.NoError(t, err)
	assert.Equal(t, "report.docx", gotName)
	assert.Equal(t, "PK-binary", gotBody)
	assert.Equal(t, "/documents/doc 1/download", fb.last().Path)
	assert.Equal(t, "Bearer tok", fb.last().Auth)
}

func TestDownloadFallsBackToGeneratedName(t *testing.T) {
	set, _ := newBackend(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	})

	var gotName string
	err := set.Documents.Download(context.Background(), "d9", SaverFunc(func(_ context.Context, name, _ string, _ io.Reader) error {
		gotName = name
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "document-d9.docx", gotName)
}

func TestAnalyzeContentValidatesBeforeNetwork(t *testing.T) {
	set, fb := newBackend(t, "tok", func(w http.ResponseWriter, r *http.Request) { writeData(w, map[string]any{}) })

	cases := []AnalyzeInput{
		{DocumentID: "d1", AnalysisType: "gdpr"},
		{Content: "<p>x</p>", AnalysisType: "gdpr"},
		{Content: "<p>x</p>", DocumentID: "d1"},
		{Content: "   ", DocumentID: "d1", AnalysisType: "gdpr"},
	}
	for _, in := range cases {
		_, err := set.Compliance.AnalyzeContent(context.Background(), in)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	}
	assert.Zero(t, fb.count())
}

func TestAnalyzeContentPostsPayload(t *testing.T) {
	set, fb := newBackend(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"documentId": "d1", "score": 87.5, "issues": []any{}})
	})

	report, err := set.Compliance.AnalyzeContent(context.Background(), AnalyzeInput{Content: "c", DocumentID: "d1", AnalysisType: "gdpr"})
	require.NoError(t, err)
	assert.Equal(t, 87.5, report.Score)
	assert.Equal(t, "gdpr", fb.last().Body["analysisType"])
}

func TestGetAllUsersEncodesOnlyNonEmptyFilters(t *testing.T) {
	set, fb := newBackend(t, "adm", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"users": []any{}, "pagination": map[string]any{"page": 2, "limit": 10, "total": 11, "totalPages": 2}})
	})

	page, err := set.Users.GetAllUsers(context.Background(), "", "", "", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "limit=10&page=2", fb.last().Query)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	_, err = set.Users.GetAllUsers(context.Background(), "ada", "active", "pro", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "limit=20&page=1&search=ada&status=active&subscription=pro", fb.last().Query)
}

func TestValidateTemplate(t *testing.T) {
	base := domain.Template{Name: "Blog", Category: "marketing", AIInstructions: "write"}

	tests := []struct {
		name    string
		fields  []domain.Field
		wantErr bool
	}{
		{name: "no fields", wantErr: false},
		{name: "dropdown with options", fields: []domain.Field{{ID: "tone", Kind: domain.FieldDropdown, Question: "Tone?", Options: []string{"formal"}}}},
		{name: "dropdown without options", fields: []domain.Field{{ID: "tone", Kind: domain.FieldDropdown, Question: "Tone?"}}, wantErr: true},
		{name: "free text with options", fields: []domain.Field{{ID: "topic", Kind: domain.FieldFreeText, Question: "Topic?", Options: []string{"a"}}}, wantErr: true},
		{name: "missing question", fields: []domain.Field{{ID: "topic", Kind: domain.FieldFreeText}}, wantErr: true},
		{name: "unknown kind", fields: []domain.Field{{ID: "x", Kind: "slider", Question: "?"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := base
			tpl.Fields = tt.fields
			err := ValidateTemplate(tpl)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
		})
	}

	err := ValidateTemplate(domain.Template{Name: "x"})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, []string{"category"}, de.Details["missing"])
}

func TestMyTicketsSortsThreads(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	set, fb := newBackend(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []any{map[string]any{
			"_id": "t1", "subject": "Billing", "status": "open",
			"messages": []any{
				map[string]any{"_id": "m2", "senderType": "Admin", "message": "hi", "timestamp": now.Add(time.Minute)},
				map[string]any{"_id": "m1", "senderType": "User", "message": "help", "timestamp": now},
			},
		}})
	})

	tickets, err := set.Tickets.MyTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "m1", tickets[0].Messages[0].ID)
	assert.Equal(t, "m2", tickets[0].Messages[1].ID)
	assert.Equal(t, "/tickets/my-tickets", fb.last().Path)

	again, err := set.Tickets.MyTickets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tickets, again)
}

func TestSendMessageRejectsBlankText(t *testing.T) {
	set, fb := newBackend(t, "tok", func(w http.ResponseWriter, r *http.Request) { writeData(w, nil) })

	_, err := set.Tickets.SendMessage(context.Background(), "t1", "  ")
	assert.True(t, apperrors.IsValidation(err))
	_, err = set.Tickets.Create(context.Background(), CreateTicketInput{Subject: "x"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, fb.count())
}

func TestAdminTicketStatusTransition(t *testing.T) {
	set, fb := newBackend(t, "adm", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"_id": "t1", "status": "closed", "messages": []any{}})
	})

	ticket, err := set.AdminTickets.UpdateStatus(context.Background(), "t1", domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	assert.Equal(t, http.MethodPut, fb.last().Method)
	assert.Equal(t, "/admin/tickets/t1/status", fb.last().Path)
	assert.Equal(t, "closed", fb.last().Body["status"])

	_, err = set.AdminTickets.UpdateStatus(context.Background(), "t1", "archived")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 1, fb.count())
}

func TestBackendFailureIsNormalized(t *testing.T) {
	set, _ := newBackend(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"language not supported","details":{"field":"targetLanguage"}}`))
	})

	_, err := set.Translation.Translate(context.Background(), TranslateInput{Text: "hola", TargetLanguage: "xx"})
	require.Error(t, err)
	assert.True(t, apperrors.IsBackend(err))
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "language not supported", de.Message)
	assert.Equal(t, "targetLanguage", de.Details["field"])
}

func TestHomepageRoundTripKeepsSectionsRaw(t *testing.T) {
	set, fb := newBackend(t, "adm", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			raw, _ := json.Marshal(map[string]any{"success": true, "data": map[string]any{"hero": map[string]any{"title": "New"}}})
			_, _ = w.Write(raw)
			return
		}
		writeData(w, map[string]any{"hero": map[string]any{"title": "Old"}, "faq": []any{}})
	})

	content, err := set.Homepage.Get(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Old"}`, string(content["hero"]))

	content["hero"] = json.RawMessage(`{"title":"New"}`)
	updated, err := set.Homepage.Update(context.Background(), content)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"New"}`, string(updated["hero"]))
	assert.Equal(t, map[string]any{"title": "New"}, fb.last().Body["hero"])
}
