package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Soodgit/ai-code-documenter/internal/client"
	"github.com/Soodgit/ai-code-documenter/internal/common/config"
)

// App wires the typed API client to the docctl subcommands. The access
// token persists in a file-backed store so short invocations reuse one
// session; the refresh cookie jar lives only for the process.
type App struct {
	api    *client.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg config.ClientConfig) (*App, error) {
	api, err := client.New(client.Config{
		BaseURL: cfg.ServerURL,
		Store:   client.NewFileTokenStore(cfg.TokenPath),
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		api:    api,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

const usage = `Usage: docctl [-server URL] <command> [arguments]

Commands:
  register          create an account and log in
  login             open a session
  logout            end the current session
  whoami            show the session owner
  add               save a code snippet
  list              list saved snippets
  show <id>         print one snippet
  delete <id>       delete one snippet
  gen               generate documentation for a file or stdin
`

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "add":
		return a.addSnippet(ctx, rest)
	case "list":
		return a.listSnippets(ctx, rest)
	case "show":
		return a.showSnippet(ctx, rest)
	case "delete":
		return a.deleteSnippet(ctx, rest)
	case "gen":
		return a.generate(ctx, rest)
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// FormatError renders API failures for terminal output.
func FormatError(err error) string {
	if errors.Is(err, client.ErrSessionExpired) {
		return "session expired, run 'docctl login'"
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
