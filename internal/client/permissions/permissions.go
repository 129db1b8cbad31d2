// Package permissions decides which actions the UI offers. It grants no
// authority: the server checks every mutating request on its own.
package permissions

import "github.com/dmitrijs2005/familyorganizer/internal/client/models"

// CanEditOrDelete reports whether user may edit or delete recipe: admins
// always, owners for their own recipes, nobody when user is nil.
func CanEditOrDelete(user *models.User, recipe models.Recipe) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || user.Username == recipe.Owner
}
