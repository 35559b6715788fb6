package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contentdesk/internal/service"
)

func (a *app) seoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seo",
		Short: "SEO writing tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "keywords <topic>",
		Short: "Suggest keywords for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireUser(ctx); err != nil {
				return err
			}
			keywords, err := a.userAPI.SEO.Keywords(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.printer.print(keywords, func() table {
				t := table{headers: []string{"KEYWORD", "VOLUME", "DIFFICULTY"}}
				for _, k := range keywords {
					t.add(k.Keyword, itoa(k.Volume), fmt.Sprintf("%.1f", k.Difficulty))
				}
				return t
			})
		},
	})
	return cmd
}

func (a *app) translateCmd() *cobra.Command {
	var in service.TranslateInput
	cmd := &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireUser(ctx); err != nil {
				return err
			}
			in.Text = strings.Join(args, " ")
			out, err := a.userAPI.Translation.Translate(ctx, in)
			if err != nil {
				return err
			}
			return a.printer.print(out, func() table {
				t := table{headers: []string{"FROM", "TO", "TEXT"}}
				t.add(orDash(out.SourceLanguage), out.TargetLanguage, out.TranslatedText)
				return t
			})
		},
	}
	cmd.Flags().StringVar(&in.SourceLanguage, "from", "", "source language, detected when empty")
	cmd.Flags().StringVar(&in.TargetLanguage, "to", "", "target language")
	return cmd
}
