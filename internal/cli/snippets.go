package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/Soodgit/ai-code-documenter/internal/client"
)

var languageByExt = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".rs":   "rust",
	".java": "java",
	".rb":   "ruby",
	".c":    "c",
	".cpp":  "cpp",
	".sh":   "bash",
	".sql":  "sql",
}

func (a *App) addSnippet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "snippet title")
	language := fs.String("lang", "", "snippet language")
	file := fs.String("file", "", "read the code from this file instead of stdin")
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
	if *title == "" {
		*title = defaultTitle(*file)
	}

	snippet, err := a.api.CreateSnippet(ctx, client.SnippetInput{
		Title:    *title,
		Language: *language,
		Code:     code,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved snippet %s\n", snippet.ID)
	return nil
}

func (a *App) listSnippets(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("limit", 0, "page size")
	offset := fs.Int("offset", 0, "page start")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snippets, err := a.api.Snippets(ctx, *limit, *offset)
	if err != nil {
		return err
	}
	if len(snippets) == 0 {
		fmt.Fprintln(a.out, "No snippets yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLANGUAGE\tUPDATED")
	for _, s := range snippets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Language, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (a *App) showSnippet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: docctl show <id>")
	}

	snippet, err := a.api.Snippet(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n\n%s\n", snippet.Title, snippet.Language, snippet.Code)
	if snippet.Documentation != "" {
		fmt.Fprintf(a.out, "\n---\n%s\n", snippet.Documentation)
	}
	return nil
}

func (a *App) deleteSnippet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: docctl delete <id>")
	}

	if err := a.api.DeleteSnippet(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// readCode loads the program text from path, or from stdin when path is
// empty so the command composes with shell pipes.
func (a *App) readCode(path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(a.reader)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("no code given: pass -file or pipe code on stdin")
	}
	return string(data), nil
}

func detectLanguage(path string) string {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

func defaultTitle(path string) string {
	if path == "" {
		return "Untitled snippet"
	}
	return filepath.Base(path)
}
