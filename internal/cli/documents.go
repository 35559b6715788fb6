package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/service"
)

const timeLayout = "2006-01-02 15:04"

func (a *app) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List, download and delete documents",
	}
	cmd.AddCommand(a.documentsListCmd(), a.documentsDownloadCmd(), a.documentsDeleteCmd())
	return cmd
}

func (a *app) documentsListCmd() *cobra.Command {
	var filter service.DocumentFilter
	var docType string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireUser(ctx); err != nil {
				return err
			}
			filter.Type = domain.DocumentType(docType)
			docs, err := a.userAPI.Documents.List(ctx, filter)
			if err != nil {
				return err
			}
			return a.printer.print(docs, func() table {
				t := table{headers: []string{"ID", "NAME", "TYPE", "CREATED"}}
				for _, d := range docs {
					t.add(d.ID, d.Name, string(d.Type), d.CreatedAt.Format(timeLayout))
				}
				return t
			})
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "match document names")
	cmd.Flags().StringVar(&docType, "type", "", "ai-writer, seo-writer, compliance, translation or template")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "page size")
	return cmd
}

func (a *app) documentsDownloadCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a document as a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireUser(ctx); err != nil {
				return err
			}
			var written string
			saver := service.SaverFunc(func(_ context.Context, name, _ string, body io.Reader) error {
				written = filepath.Join(dir, filepath.Base(name))
				return writeFile(written, body)
			})
			if err := a.userAPI.Documents.Download(ctx, args[0], saver); err != nil {
				return err
			}
			a.say("Saved %s", written)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "target directory")
	return cmd
}

func writeFile(path string, body io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func (a *app) documentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireUser(ctx); err != nil {
				return err
			}
			if err := a.userAPI.Documents.Delete(ctx, args[0]); err != nil {
				return err
			}
			a.say("Deleted %s", args[0])
			return nil
		},
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
