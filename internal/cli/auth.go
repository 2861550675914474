package cli

import (
	"context"
	"fmt"

	"github.com/Soodgit/ai-code-documenter/internal/client"
)

func (a *App) register(ctx context.Context) error {
	username, err := a.promptText("Username")
	if err != nil {
		return err
	}
	email, err := a.promptText("Email")
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Password")
	if err != nil {
		return err
	}

	user, err := a.api.Register(ctx, client.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered and logged in as %s\n", user.Username)
	return nil
}

func (a *App) login(ctx context.Context) error {
	identifier, err := a.promptText("Email or username")
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Password")
	if err != nil {
		return err
	}

	user, err := a.api.Login(ctx, identifier, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", user.Username)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.Username, user.Email)
	return nil
}
