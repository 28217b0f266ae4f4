package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errEmptyInput = errors.New("input must not be empty")

func (a *App) prompt(text string) (string, error) {
	v, err := getSimpleText(a.reader, text, a.console())
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", errEmptyInput
	}
	return v, nil
}

// password reads a password and wipes the entered bytes.
func (a *App) password() (string, error) {
	pw, err := getPassword(a.console())
	if err != nil {
		return "", err
	}
	defer clear(pw)
	if len(pw) == 0 {
		return "", errEmptyInput
	}
	return string(pw), nil
}

// Register prompts for email, username and password and creates an account.
func (a *App) Register(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	username, err := a.prompt("Enter username")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	req := client.RegisterRequest{Email: email, Username: username, Password: password}
	if err := a.authService.Register(ctx, req); err != nil {
		return err
	}

	a.printf("Account created. Check your inbox and run 'verify' with the token.\n")
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	token, err := a.prompt("Enter verification token")
	if err != nil {
		return err
	}
	if err := a.authService.VerifyEmail(ctx, token); err != nil {
		return err
	}
	a.printf("Email verified. You can log in now.\n")
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	if err := a.authService.ForgotPassword(ctx, email); err != nil {
		return err
	}
	a.printf("If the address is registered, a reset token is on its way.\n")
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	token, err := a.prompt("Enter reset token")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}
	if err := a.authService.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	a.printf("Password updated. You can log in now.\n")
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.setUser(u)
	a.printf("Logged in as %s (%s).\n", u.Username, u.Email)
	return nil
}

// Logout ends the session. Local credentials are removed even when the
// server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setUser(nil)
	a.printf("Logged out.\n")
	return nil
}

// Stay answers the expiry warning by extending the session.
func (a *App) Stay(ctx context.Context) error {
	if err := a.authService.StayConnected(ctx); err != nil {
		return err
	}

	st, err := a.authService.Status(ctx)
	if err != nil {
		return err
	}
	if st.Session.ExpiresAt.IsZero() {
		a.printf("Session extended.\n")
		return nil
	}
	a.printf("Session extended until %s.\n", st.Session.ExpiresAt.Local().Format(time.TimeOnly))
	return nil
}
