package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
)

type ProfileAPI interface {
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, req models.PasswordChange) (*models.User, error)
}

// ProfileService reads and edits the account of the logged in user. After
// every change the user is refetched and the refetched copy is returned.
type ProfileService interface {
	Me(ctx context.Context) (*models.User, error)
	SaveProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, req models.PasswordChange) (*models.User, error)
}

type profileService struct {
	api      ProfileAPI
	session  Session
	validate Validator
}

func NewProfileService(api ProfileAPI, session Session, v Validator) ProfileService {
	return &profileService{api: api, session: session, validate: v}
}

func (p *profileService) Me(ctx context.Context) (*models.User, error) {
	if err := requireAuth(p.session); err != nil {
		return nil, err
	}
	u, err := p.session.RefreshUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return u, nil
}

func (p *profileService) SaveProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	if err := requireAuth(p.session); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, ErrNothingToUpdate
	}
	if err := p.validate.Struct(upd); err != nil {
		return nil, err
	}

	if _, err := p.api.UpdateProfile(ctx, upd); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p.resync(ctx)
}

func (p *profileService) ChangePassword(ctx context.Context, req models.PasswordChange) (*models.User, error) {
	if err := requireAuth(p.session); err != nil {
		return nil, err
	}
	if err := p.validate.Struct(req); err != nil {
		return nil, err
	}

	if _, err := p.api.ChangePassword(ctx, req); err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	return p.resync(ctx)
}

func (p *profileService) resync(ctx context.Context) (*models.User, error) {
	u, err := p.session.RefreshUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh user: %w", err)
	}
	return u, nil
}
