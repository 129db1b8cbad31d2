package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/dmitrijs2005/familyorganizer/internal/client/permissions"
	"github.com/dmitrijs2005/familyorganizer/internal/client/querycache"
	"github.com/dmitrijs2005/familyorganizer/internal/client/recipelist"
	"github.com/dmitrijs2005/familyorganizer/internal/logging"
)

type RecipeAPI interface {
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, req models.RecipeCreate) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, upd models.RecipeUpdate) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
}

// RecipeView is a recipe annotated with what the current user may do to it.
type RecipeView struct {
	models.Recipe
	CanEdit bool
}

type RecipeService interface {
	List(ctx context.Context, opts recipelist.Options) ([]models.Recipe, error)
	ListView(ctx context.Context, opts recipelist.Options) ([]RecipeView, error)
	Get(ctx context.Context, id int64) (*RecipeView, error)
	Create(ctx context.Context, req models.RecipeCreate) (*models.Recipe, error)
	Update(ctx context.Context, id int64, upd models.RecipeUpdate) (*models.Recipe, error)
	Delete(ctx context.Context, id int64) error
}

type recipeService struct {
	api      RecipeAPI
	session  Session
	cache    *querycache.Cache
	validate Validator
	logger   logging.Logger
}

func NewRecipeService(api RecipeAPI, session Session, cache *querycache.Cache, v Validator, logger logging.Logger) RecipeService {
	return &recipeService{api: api, session: session, cache: cache, validate: v, logger: logger}
}

func (s *recipeService) all(ctx context.Context) ([]models.Recipe, error) {
	recipes, err := querycache.Query(ctx, s.cache, querycache.RecipeKeyAll, s.api.ListRecipes)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *recipeService) List(ctx context.Context, opts recipelist.Options) ([]models.Recipe, error) {
	if err := requireAuth(s.session); err != nil {
		return nil, err
	}
	recipes, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return recipelist.Apply(recipes, opts), nil
}

func (s *recipeService) ListView(ctx context.Context, opts recipelist.Options) ([]RecipeView, error) {
	recipes, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	user := s.session.User()
	views := make([]RecipeView, len(recipes))
	for i, r := range recipes {
		views[i] = RecipeView{Recipe: r, CanEdit: permissions.CanEditOrDelete(user, r)}
	}
	return views, nil
}

func (s *recipeService) get(ctx context.Context, id int64) (models.Recipe, error) {
	r, err := querycache.Query(ctx, s.cache, querycache.RecipeKey(id), func(ctx context.Context) (models.Recipe, error) {
		r, err := s.api.GetRecipe(ctx, id)
		if err != nil {
			return models.Recipe{}, err
		}
		return *r, nil
	})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe %d: %w", id, err)
	}
	return r, nil
}

func (s *recipeService) Get(ctx context.Context, id int64) (*RecipeView, error) {
	if err := requireAuth(s.session); err != nil {
		return nil, err
	}
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RecipeView{Recipe: r, CanEdit: permissions.CanEditOrDelete(s.session.User(), r)}, nil
}

func (s *recipeService) Create(ctx context.Context, req models.RecipeCreate) (*models.Recipe, error) {
	if err := requireAuth(s.session); err != nil {
		return nil, err
	}
	req.Tags = models.UniqueTags(req.Tags)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	r, err := s.api.CreateRecipe(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	s.invalidate(r.ID)
	s.logger.Info(ctx, "recipe created", "id", r.ID)
	return r, nil
}

func (s *recipeService) Update(ctx context.Context, id int64, upd models.RecipeUpdate) (*models.Recipe, error) {
	if err := requireAuth(s.session); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, ErrNothingToUpdate
	}
	if upd.Tags != nil {
		tags := models.UniqueTags(*upd.Tags)
		upd.Tags = &tags
	}
	if err := s.validate.Struct(upd); err != nil {
		return nil, err
	}
	if err := s.checkPermitted(ctx, id); err != nil {
		return nil, err
	}

	r, err := s.api.UpdateRecipe(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update recipe %d: %w", id, err)
	}
	s.invalidate(id)
	s.logger.Info(ctx, "recipe updated", "id", id)
	return r, nil
}

func (s *recipeService) Delete(ctx context.Context, id int64) error {
	if err := requireAuth(s.session); err != nil {
		return err
	}
	if err := s.checkPermitted(ctx, id); err != nil {
		return err
	}

	if err := s.api.DeleteRecipe(ctx, id); err != nil {
		return fmt.Errorf("delete recipe %d: %w", id, err)
	}
	s.invalidate(id)
	s.logger.Info(ctx, "recipe deleted", "id", id)
	return nil
}

func (s *recipeService) checkPermitted(ctx context.Context, id int64) error {
	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !permissions.CanEditOrDelete(s.session.User(), r) {
		return ErrNotPermitted
	}
	return nil
}

func (s *recipeService) invalidate(id int64) {
	s.cache.Invalidate(querycache.RecipeKeyAll, querycache.RecipeKey(id))
}
