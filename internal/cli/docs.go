package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/Soodgit/ai-code-documenter/internal/client"
)

func (a *App) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	language := fs.String("lang", "", "code language")
	file := fs.String("file", "", "read the code from this file instead of stdin")
	title := fs.String("title", "", "document title")
	save := fs.Bool("save", false, "also save the snippet with its documentation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	code, err := a.readCode(*file)
	if err != nil {
		return err
	}
	if *language == "" {
		*language = detectLanguage(*file)
	}

	result, err := a.api.GenerateDocs(ctx, client.GenerateInput{
		Language: *language,
		Code:     code,
		Title:    *title,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, result.Markdown)

	if *save {
		t := *title
		if t == "" {
			t = defaultTitle(*file)
		}
		snippet, err := a.api.CreateSnippet(ctx, client.SnippetInput{
			Title:         t,
			Language:      *language,
			Code:          code,
			Documentation: result.Markdown,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "\nSaved snippet %s\n", snippet.ID)
	}
	return nil
}
