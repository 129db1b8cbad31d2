// Package recipelist filters and orders recipe collections for display.
// Every function returns a new slice and leaves its input untouched.
package recipelist

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
)

type SortMode string

const (
	TitleAsc    SortMode = "TITLE_ASC"
	TitleDesc   SortMode = "TITLE_DESC"
	OwnerAsc    SortMode = "OWNER_ASC"
	UpdatedAsc  SortMode = "UPDATED_ASC"
	UpdatedDesc SortMode = "UPDATED_DESC"

	DefaultSortMode = UpdatedDesc
)

var SortModes = []SortMode{TitleAsc, TitleDesc, OwnerAsc, UpdatedAsc, UpdatedDesc}

// ParseSortMode accepts a mode name in any case. Empty input selects
// DefaultSortMode.
func ParseSortMode(s string) (SortMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSortMode, nil
	}
	m := SortMode(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	if !slices.Contains(SortModes, m) {
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
	return m, nil
}

// Filter keeps the recipes whose title, owner and tags contain every term
// of query. A blank query returns the input as is.
func Filter(recipes []models.Recipe, query string) []models.Recipe {
	terms := Terms(query)
	if len(terms) == 0 {
		return recipes
	}

	out := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		text := searchText(r)
		if containsAll(text, terms) {
			out = append(out, r)
		}
	}
	return out
}

func searchText(r models.Recipe) string {
	parts := make([]string, 0, len(r.Tags)+2)
	parts = append(parts, r.Title, r.Owner)
	for _, t := range r.Tags {
		parts = append(parts, string(t))
	}
	return Normalize(strings.Join(parts, " "))
}

func containsAll(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// FilterByTags keeps the recipes carrying all of tags. No tags returns the
// input as is.
func FilterByTags(recipes []models.Recipe, tags []models.RecipeTag) []models.Recipe {
	if len(tags) == 0 {
		return recipes
	}

	out := make([]models.Recipe, 0, len(recipes))
outer:
	for _, r := range recipes {
		for _, t := range tags {
			if !r.HasTag(t) {
				continue outer
			}
		}
		out = append(out, r)
	}
	return out
}

// Sort returns recipes ordered by mode. Equal elements keep their input
// order. Unknown modes fall back to DefaultSortMode.
func Sort(recipes []models.Recipe, mode SortMode) []models.Recipe {
	out := slices.Clone(recipes)
	if out == nil {
		return nil
	}

	col := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)

	var compare func(a, b models.Recipe) int
	switch mode {
	case TitleAsc:
		compare = func(a, b models.Recipe) int { return col.CompareString(a.Title, b.Title) }
	case TitleDesc:
		compare = func(a, b models.Recipe) int { return col.CompareString(b.Title, a.Title) }
	case OwnerAsc:
		compare = func(a, b models.Recipe) int { return col.CompareString(a.Owner, b.Owner) }
	case UpdatedAsc:
		compare = func(a, b models.Recipe) int { return compareUpdated(a, b) }
	default:
		compare = func(a, b models.Recipe) int { return compareUpdated(b, a) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

func compareUpdated(a, b models.Recipe) int {
	return cmp.Compare(timestamp(a.UpdatedAt), timestamp(b.UpdatedAt))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timestamp returns unix nanoseconds of s, or the minimum int64 when s is
// missing or unparseable. Zone-less values are read as UTC.
func timestamp(s string) int64 {
	if s == "" {
		return minTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixNano()
		}
	}
	return minTimestamp
}

const minTimestamp = -1 << 63

// Options selects the pipeline stages applied by Apply.
type Options struct {
	Query string
	Tags  []models.RecipeTag
	Mode  SortMode
}

// Apply runs Filter, then FilterByTags, then Sort.
func Apply(recipes []models.Recipe, opts Options) []models.Recipe {
	out := Filter(recipes, opts.Query)
	out = FilterByTags(out, opts.Tags)
	return Sort(out, opts.Mode)
}
