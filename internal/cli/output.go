package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v2"

	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// Format selects how command results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func parseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown output format %q", s), map[string]any{
		"allowed": []string{string(FormatTable), string(FormatJSON), string(FormatYAML)},
	})
}

type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

type printer struct {
	out    io.Writer
	format Format
}

// print writes v in the selected format. Tables are built lazily since
// structured formats never need them.
func (p *printer) print(v any, asTable func() table) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		return p.yaml(v)
	}
	return p.table(asTable())
}

// yaml goes through JSON first so keys match the API field names.
func (p *printer) yaml(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = p.out.Write(out)
	return err
}

func (p *printer) table(t table) error {
	if len(t.rows) == 0 {
		_, err := fmt.Fprintln(p.out, "No results")
		return err
	}
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.headers, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
