package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// envelope is the {success, data} wrapper of every backend JSON response.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Details map[string]any  `json:"details"`
	Errors  json.RawMessage `json:"errors"`
}

// unwrap maps a raw response onto data or a normalized error. Bodies without
// a success flag are treated as bare data.
func (c *Client) unwrap(ctx context.Context, status int, body []byte) (json.RawMessage, error) {
	var env envelope
	trimmed := bytes.TrimSpace(body)
	isObject := len(trimmed) > 0 && trimmed[0] == '{'
	if isObject {
		if err := json.Unmarshal(trimmed, &env); err != nil {
			isObject = false
		}
	}

	if status == http.StatusUnauthorized {
		c.invalidate(ctx)
		msg := env.message()
		if msg == "" {
			msg = "session expired or invalid"
		}
		return nil, apperrors.NewAuthError(msg)
	}

	if status < 200 || status >= 300 {
		return nil, apperrors.NewBackendError(status, env.message(), env.details())
	}

	if !isObject || env.Success == nil {
		return json.RawMessage(trimmed), nil
	}
	if !*env.Success {
		return nil, apperrors.NewBackendError(status, env.message(), env.details())
	}
	return env.Data, nil
}

func (c *Client) invalidate(ctx context.Context) {
	inv, ok := c.tokens.(Invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		c.logger.Warn("invalidate rejected session", zap.Error(err))
	}
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil {
		return obj.Message
	}
	return ""
}

func (e envelope) details() map[string]any {
	if len(e.Details) > 0 {
		return e.Details
	}
	if len(e.Errors) > 0 && string(e.Errors) != "null" {
		var errs any
		if err := json.Unmarshal(e.Errors, &errs); err == nil {
			return map[string]any{"errors": errs}
		}
	}
	return nil
}

// FilenameFromDisposition extracts the filename parameter of a
// Content-Disposition header, or "" when absent.
func FilenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
