package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RecipeTag is a category label attachable to a recipe. The set is closed.
type RecipeTag string

const (
	TagBreakfast  RecipeTag = "BREAKFAST"
	TagLunch      RecipeTag = "LUNCH"
	TagDinner     RecipeTag = "DINNER"
	TagDessert    RecipeTag = "DESSERT"
	TagSnack      RecipeTag = "SNACK"
	TagVegetarian RecipeTag = "VEGETARIAN"
)

// AllRecipeTags lists every tag in display order.
var AllRecipeTags = []RecipeTag{TagBreakfast, TagLunch, TagDinner, TagDessert, TagSnack, TagVegetarian}

// Valid reports whether t belongs to the closed tag set.
func (t RecipeTag) Valid() bool {
	for _, known := range AllRecipeTags {
		if t == known {
			return true
		}
	}
	return false
}

// ParseRecipeTag parses a tag name case-insensitively.
func ParseRecipeTag(s string) (RecipeTag, error) {
	t := RecipeTag(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTag, s)
	}
	return t, nil
}

// Recipe is a server-owned recipe. Identity is ID; Owner is the username of
// the account that created it.
type Recipe struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Owner       string      `json:"owner"`
	Ingredients []string    `json:"ingredients"`
	Instruction string      `json:"instruction"`
	Tags        []RecipeTag `json:"tags"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

// UnmarshalJSON decodes a recipe and drops duplicate tags, since tags form a set.
func (r *Recipe) UnmarshalJSON(b []byte) error {
	type plain Recipe
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	p.Tags = UniqueTags(p.Tags)
	*r = Recipe(p)
	return nil
}

// HasTag reports whether the recipe carries tag t.
func (r Recipe) HasTag(t RecipeTag) bool {
	for _, tag := range r.Tags {
		if tag == t {
			return true
		}
	}
	return false
}

// UniqueTags returns tags without duplicates, keeping first-seen order.
func UniqueTags(tags []RecipeTag) []RecipeTag {
	if tags == nil {
		return nil
	}
	seen := make(map[RecipeTag]struct{}, len(tags))
	out := make([]RecipeTag, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
