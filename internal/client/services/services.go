// Package services contains the application services of the family
// organizer client. Each service validates input locally, talks to the API
// and keeps the session and the query cache consistent with the result.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
)

var (
	ErrNotPermitted     = errors.New("not permitted to change this recipe")
	ErrNothingToUpdate  = errors.New("nothing to update")
	ErrNotAuthenticated = errors.New("not logged in")
)

// Session is the subset of *session.Container the services depend on.
type Session interface {
	Login(ctx context.Context, resp models.LoginResponse) error
	Logout(ctx context.Context) error
	RefreshUser(ctx context.Context) (*models.User, error)
	User() *models.User
	IsAuthenticated() bool
}

// Validator checks a payload before it is sent.
type Validator interface {
	Struct(s any) error
}

func requireAuth(s Session) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}
