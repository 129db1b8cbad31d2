package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/dmitrijs2005/familyorganizer/internal/client/querycache"
	"github.com/dmitrijs2005/familyorganizer/internal/logging"
)

// AuthAPI is the part of the API client used by AuthService.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate, persist the token and start the session.
//   - Register: create an account. It does not log in.
//   - Logout: end the session and drop cached data.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, username, password string) (*models.RegisterResponse, error)
	Logout(ctx context.Context) error
}

type authService struct {
	api      AuthAPI
	session  Session
	cache    *querycache.Cache
	validate Validator
	logger   logging.Logger
}

func NewAuthService(api AuthAPI, session Session, cache *querycache.Cache, v Validator, logger logging.Logger) AuthService {
	return &authService{api: api, session: session, cache: cache, validate: v, logger: logger}
}

func (a *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	req := models.LoginRequest{Username: username, Password: password}
	if err := a.validate.Struct(req); err != nil {
		return nil, err
	}

	resp, err := a.api.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := a.session.Login(ctx, *resp); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	a.cache.Clear()

	u := resp.User
	return &u, nil
}

func (a *authService) Register(ctx context.Context, username, password string) (*models.RegisterResponse, error) {
	req := models.RegisterRequest{Username: username, Password: password}
	if err := a.validate.Struct(req); err != nil {
		return nil, err
	}

	resp, err := a.api.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	a.logger.Info(ctx, "account registered", "username", resp.Username)
	return resp, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.cache.Clear()
	if err := a.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
