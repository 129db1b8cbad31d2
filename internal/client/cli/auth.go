package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
)

// getSimpleText, getPassword, getLines and getMultiline are indirections
// used to facilitate testing. They point to interactive input helpers and
// can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getLines      = GetLines
	getMultiline  = GetMultiline
)

var errPasswordsDiffer = errors.New("passwords do not match")

// Register prompts for a username and a password (twice) and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Choose a password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)
	confirm, err := getPassword("Repeat the password", a.out)
	if err != nil {
		return err
	}
	defer wipe(confirm)

	if string(password) != string(confirm) {
		return a.fail(ctx, "register", errPasswordsDiffer)
	}

	var resp *models.RegisterResponse
	err = a.busy(func() error {
		resp, err = a.authService.Register(ctx, username, string(password))
		return err
	})
	if err != nil {
		return a.fail(ctx, "register", err)
	}

	printlnFn("Account", resp.Username, "created, you can log in now")
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	var user *models.User
	err = a.busy(func() error {
		user, err = a.authService.Login(ctx, username, string(password))
		return err
	})
	if err != nil {
		return a.fail(ctx, "login", err)
	}

	printlnFn("Welcome,", user.DisplayName())
	return nil
}

// Logout ends the session and removes the saved token.
func (a *App) Logout(ctx context.Context) error {
	a.loggingOut.Store(true)
	defer a.loggingOut.Store(false)

	if err := a.authService.Logout(ctx); err != nil {
		return a.fail(ctx, "logout", err)
	}
	printlnFn("Logged out")
	return nil
}
