package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wynotes/go-notes/internal/markdown"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

func newRenderCommand() *cobra.Command {
	var (
		theme        string
		transformers []string
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a Markdown file to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range transformers {
				if !markdown.KnownTransformer(name) {
					return fmt.Errorf("render: unknown transformer %q", name)
				}
			}
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := markdown.BuildDocument(args[0], source)
			if err != nil {
				return err
			}

			renderer := markdown.NewRenderer(markdown.Config{Theme: theme, Transformers: transformers})
			rendered, err := renderer.Render(cmd.Context(), doc.Body, interfaces.RenderOptions{})
			if err != nil {
				return fmt.Errorf("render %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					FrontMatter interfaces.FrontMatter        `json:"frontMatter"`
					Rendered    *interfaces.RenderedDocument `json:"rendered"`
				}{doc.FrontMatter, rendered})
			}
			_, err = fmt.Fprintln(out, rendered.HTML)
			return err
		},
	}
	cmd.Flags().StringVar(&theme, "theme", markdown.DefaultTheme, "code highlighting theme")
	cmd.Flags().StringSliceVar(&transformers, "transformers", markdown.DefaultTransformers(), "code block transformers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print front matter, table of contents and HTML as JSON")
	return cmd
}
