package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
)

func (a *App) Me(ctx context.Context) error {
	var user *models.User
	err := a.busy(func() (err error) {
		user, err = a.profileService.Me(ctx)
		return err
	})
	if err != nil {
		return a.fail(ctx, "me", err)
	}
	printlnFn(formatUser(user))
	return nil
}

// EditProfile prompts for each profile field; a blank answer keeps the
// current value.
func (a *App) EditProfile(ctx context.Context) error {
	var upd models.ProfileUpdate

	email, err := getSimpleText(a.reader, "Email (blank to keep)", a.out)
	if err != nil {
		return err
	}
	first, err := getSimpleText(a.reader, "First name (blank to keep)", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Last name (blank to keep)", a.out)
	if err != nil {
		return err
	}
	ageText, err := getSimpleText(a.reader, "Age (blank to keep)", a.out)
	if err != nil {
		return err
	}

	upd.Email = optional(email)
	upd.FirstName = optional(first)
	upd.LastName = optional(last)
	if ageText != "" {
		age, err := strconv.Atoi(ageText)
		if err != nil {
			return a.fail(ctx, "profile", fmt.Errorf("age must be a whole number"))
		}
		upd.Age = &age
	}

	var user *models.User
	err = a.busy(func() error {
		user, err = a.profileService.SaveProfile(ctx, upd)
		return err
	})
	if err != nil {
		return a.fail(ctx, "profile", err)
	}

	printlnFn("Profile saved")
	printlnFn(formatUser(user))
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer wipe(current)
	next, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer wipe(next)
	confirm, err := getPassword("Repeat the new password", a.out)
	if err != nil {
		return err
	}
	defer wipe(confirm)

	req := models.PasswordChange{
		CurrentPassword:    string(current),
		NewPassword:        string(next),
		NewPasswordConfirm: string(confirm),
	}
	err = a.busy(func() error {
		_, err := a.profileService.ChangePassword(ctx, req)
		return err
	})
	if err != nil {
		return a.fail(ctx, "passwd", err)
	}

	printlnFn("Password changed")
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
