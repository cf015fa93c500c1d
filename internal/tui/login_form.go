package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/leadr/internal/styles"
)

// LoginForm wraps a huh.Form for the login route.
type LoginForm struct {
	form     *huh.Form
	username string
	password string
}

// NewLoginForm creates a login form. The username is kept across attempts.
func NewLoginForm(username string) *LoginForm {
	f := &LoginForm{username: username}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&f.username).
				Validate(requiredValidator("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		).Title("Sign in"),
	).WithTheme(styles.FormTheme())

	return f
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *LoginForm) Form() *huh.Form {
	return f.form
}

// Credentials returns the entered username and password.
func (f *LoginForm) Credentials() (string, string) {
	return strings.TrimSpace(f.username), f.password
}

// View renders the form.
func (f *LoginForm) View() string {
	return f.form.View()
}
