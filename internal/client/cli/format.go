package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/dmitrijs2005/familyorganizer/internal/client/services"
)

// formatRecipeTable renders one line per recipe. Recipes the user may edit
// are marked with '*'.
func formatRecipeTable(views []services.RecipeView) string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tTITLE\tOWNER\tTAGS\tUPDATED")
	for _, v := range views {
		mark := ""
		if v.CanEdit {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", mark, v.ID, v.Title, v.Owner, joinTags(v.Tags), v.UpdatedAt)
	}
	_ = tw.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

func formatRecipe(v services.RecipeView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s\n", v.ID, v.Title)
	fmt.Fprintf(&b, "by %s, updated %s\n", v.Owner, v.UpdatedAt)
	if len(v.Tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", joinTags(v.Tags))
	}
	if len(v.Ingredients) > 0 {
		b.WriteString("ingredients:\n")
		for _, ing := range v.Ingredients {
			fmt.Fprintf(&b, "  - %s\n", ing)
		}
	}
	if v.Instruction != "" {
		fmt.Fprintf(&b, "instruction:\n%s\n", v.Instruction)
	}
	if v.CanEdit {
		b.WriteString("(you can edit or delete this recipe)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatUser(u *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", u.Username, u.Role)
	line := func(label string, v *string) {
		if v != nil && *v != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, *v)
		}
	}
	line("first name", u.FirstName)
	line("last name", u.LastName)
	line("email", u.Email)
	if u.Age != nil {
		fmt.Fprintf(&b, "age: %s\n", strconv.Itoa(*u.Age))
	}
	fmt.Fprintf(&b, "member since %s", u.CreatedAt)
	return b.String()
}

func joinTags(tags []models.RecipeTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
