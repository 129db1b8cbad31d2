package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/dmitrijs2005/familyorganizer/internal/client/recipelist"
	"github.com/dmitrijs2005/familyorganizer/internal/client/services"
)

var errUsageID = errors.New("a numeric recipe id is required")

// Recipes lists recipes. Arguments: free-text query terms plus any of
// --sort MODE and --tag TAG (repeatable). "--sort=MODE" and "--tag=TAG"
// are accepted as well.
func (a *App) Recipes(ctx context.Context, args []string) error {
	opts, err := parseListArgs(args)
	if err != nil {
		return a.fail(ctx, "recipes", err)
	}

	var views []services.RecipeView
	err = a.busy(func() error {
		views, err = a.recipeService.ListView(ctx, opts)
		return err
	})
	if err != nil {
		return a.fail(ctx, "recipes", err)
	}

	if len(views) == 0 {
		printlnFn("No recipes found")
		return nil
	}
	printlnFn(formatRecipeTable(views))
	return nil
}

func parseListArgs(args []string) (recipelist.Options, error) {
	opts := recipelist.Options{Mode: recipelist.DefaultSortMode}
	var terms []string

	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		switch name {
		case "--sort", "-s", "--tag", "-t":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s needs a value", name)
				}
				i++
				value = args[i]
			}
			if name == "--sort" || name == "-s" {
				mode, err := recipelist.ParseSortMode(value)
				if err != nil {
					return opts, err
				}
				opts.Mode = mode
				continue
			}
			tag, err := models.ParseRecipeTag(value)
			if err != nil {
				return opts, err
			}
			opts.Tags = append(opts.Tags, tag)
		default:
			terms = append(terms, args[i])
		}
	}

	opts.Query = strings.Join(terms, " ")
	return opts, nil
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errUsageID
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsageID
	}
	return id, nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return a.fail(ctx, "show", err)
	}

	var view *services.RecipeView
	err = a.busy(func() error {
		view, err = a.recipeService.Get(ctx, id)
		return err
	})
	if err != nil {
		return a.fail(ctx, "show", err)
	}
	printlnFn(formatRecipe(*view))
	return nil
}

// Add prompts for the recipe fields and creates it.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	ingredients, err := getLines(a.reader, "Ingredients, one per line", a.out)
	if err != nil {
		return err
	}
	instruction, err := getMultiline(a.reader, "Instruction", a.out)
	if err != nil {
		return err
	}
	tagsText, err := getSimpleText(a.reader, "Tags, comma separated ("+tagNames()+")", a.out)
	if err != nil {
		return err
	}
	tags, err := parseTags(tagsText)
	if err != nil {
		return a.fail(ctx, "add", err)
	}

	req := models.RecipeCreate{
		Title:       title,
		Ingredients: ingredients,
		Instruction: instruction,
		Tags:        tags,
	}

	var r *models.Recipe
	err = a.busy(func() error {
		r, err = a.recipeService.Create(ctx, req)
		return err
	})
	if err != nil {
		return a.fail(ctx, "add", err)
	}
	printlnFn(fmt.Sprintf("Recipe %d created", r.ID))
	return nil
}

// Edit shows the recipe and prompts for new values; blank answers keep the
// current value. For tags, "none" removes all of them.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return a.fail(ctx, "edit", err)
	}

	var view *services.RecipeView
	err = a.busy(func() error {
		view, err = a.recipeService.Get(ctx, id)
		return err
	})
	if err != nil {
		return a.fail(ctx, "edit", err)
	}
	if !view.CanEdit {
		return a.fail(ctx, "edit", services.ErrNotPermitted)
	}
	printlnFn(formatRecipe(*view))

	var upd models.RecipeUpdate

	title, err := getSimpleText(a.reader, "New title (blank to keep)", a.out)
	if err != nil {
		return err
	}
	upd.Title = optional(title)

	ingredients, err := getLines(a.reader, "New ingredients, one per line (blank to keep)", a.out)
	if err != nil {
		return err
	}
	if len(ingredients) > 0 {
		upd.Ingredients = &ingredients
	}

	instruction, err := getMultiline(a.reader, "New instruction (blank to keep)", a.out)
	if err != nil {
		return err
	}
	upd.Instruction = optional(instruction)

	tagsText, err := getSimpleText(a.reader, "New tags, comma separated (blank to keep, 'none' to clear)", a.out)
	if err != nil {
		return err
	}
	switch strings.ToLower(tagsText) {
	case "":
	case "none":
		upd.Tags = &[]models.RecipeTag{}
	default:
		tags, err := parseTags(tagsText)
		if err != nil {
			return a.fail(ctx, "edit", err)
		}
		upd.Tags = &tags
	}

	err = a.busy(func() error {
		_, err = a.recipeService.Update(ctx, id, upd)
		return err
	})
	if err != nil {
		return a.fail(ctx, "edit", err)
	}
	printlnFn(fmt.Sprintf("Recipe %d saved", id))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return a.fail(ctx, "delete", err)
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete recipe %d? [y/N]", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled")
		return nil
	}

	err = a.busy(func() error {
		return a.recipeService.Delete(ctx, id)
	})
	if err != nil {
		return a.fail(ctx, "delete", err)
	}
	printlnFn(fmt.Sprintf("Recipe %d deleted", id))
	return nil
}

func (a *App) Tags(_ context.Context) error {
	printlnFn("Tags:", tagNames())
	printlnFn("Sort modes:", sortModeNames())
	return nil
}

func parseTags(s string) ([]models.RecipeTag, error) {
	var tags []models.RecipeTag
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tag, err := models.ParseRecipeTag(part)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return models.UniqueTags(tags), nil
}

func tagNames() string {
	names := make([]string, len(models.AllRecipeTags))
	for i, t := range models.AllRecipeTags {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func sortModeNames() string {
	names := make([]string, len(recipelist.SortModes))
	for i, m := range recipelist.SortModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
