package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipeTag(t *testing.T) {
	tag, err := ParseRecipeTag(" dessert ")
	require.NoError(t, err)
	assert.Equal(t, TagDessert, tag)

	_, err = ParseRecipeTag("brunch")
	require.ErrorIs(t, err, ErrUnknownTag)
}

func TestAllRecipeTags_ClosedSetOfSix(t *testing.T) {
	require.Len(t, AllRecipeTags, 6)
	for _, tag := range AllRecipeTags {
		assert.True(t, tag.Valid(), tag)
	}
	assert.False(t, RecipeTag("LUNCHEON").Valid())
}

func TestRecipe_UnmarshalDropsDuplicateTags(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{"id":3,"title":"Soup","owner":"bob","tags":["LUNCH","DINNER","LUNCH"]}`), &r)
	require.NoError(t, err)

	assert.Equal(t, int64(3), r.ID)
	assert.Equal(t, []RecipeTag{TagLunch, TagDinner}, r.Tags)
	assert.True(t, r.HasTag(TagDinner))
	assert.False(t, r.HasTag(TagDessert))
}

func TestUser_DisplayNameAndAdmin(t *testing.T) {
	first, last := "Ada", "Lovelace"

	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.Equal(t, "", nilUser.DisplayName())

	u := &User{Username: "ada", Role: RoleAdmin}
	assert.True(t, u.IsAdmin())
	assert.Equal(t, "ada", u.DisplayName())

	u.FirstName = &first
	assert.Equal(t, "Ada", u.DisplayName())

	u.LastName = &last
	assert.Equal(t, "Ada Lovelace", u.DisplayName())
}

func TestProfileUpdate_OmitsNilFields(t *testing.T) {
	age := 40
	b, err := json.Marshal(ProfileUpdate{Age: &age})
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":40}`, string(b))
	assert.True(t, ProfileUpdate{}.Empty())
	assert.True(t, RecipeUpdate{}.Empty())
}
