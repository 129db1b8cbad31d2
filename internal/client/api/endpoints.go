package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
)

func recipePath(id int64) string {
	return fmt.Sprintf("/recipes/%d", id)
}

// Login exchanges credentials for a token and the user it belongs to.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser returns the account the bearer token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", true, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FetchCurrentUser looks up the user for an explicit token, ignoring the
// client's token source.
func (c *Client) FetchCurrentUser(ctx context.Context, token string) (*models.User, error) {
	return c.CurrentUser(WithToken(ctx, token))
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPatch, "/users/me/profile", true, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, req models.PasswordChange) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPatch, "/users/me/password", true, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	recipes := make([]models.Recipe, 0)
	if err := c.do(ctx, http.MethodGet, "/recipes", true, nil, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (c *Client) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	var r models.Recipe
	if err := c.do(ctx, http.MethodGet, recipePath(id), true, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) CreateRecipe(ctx context.Context, req models.RecipeCreate) (*models.Recipe, error) {
	var r models.Recipe
	if err := c.do(ctx, http.MethodPost, "/recipes", true, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateRecipe(ctx context.Context, id int64, upd models.RecipeUpdate) (*models.Recipe, error) {
	var r models.Recipe
	if err := c.do(ctx, http.MethodPatch, recipePath(id), true, upd, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRecipe expects 204 with an empty body.
func (c *Client) DeleteRecipe(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, recipePath(id), true, nil, nil)
}
