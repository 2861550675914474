package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var readPassword = term.ReadPassword

func (a *App) promptText(prompt string) (string, error) {
	if _, err := fmt.Fprintf(a.out, "%s: ", prompt); err != nil {
		return "", err
	}

	line, err := a.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password from the terminal without echo.
func (a *App) promptPassword(prompt string) (string, error) {
	if _, err := fmt.Fprintf(a.out, "%s: ", prompt); err != nil {
		return "", err
	}

	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
