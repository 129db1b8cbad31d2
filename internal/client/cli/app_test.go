package cli

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/familyorganizer/internal/client/apitest"
	"github.com/dmitrijs2005/familyorganizer/internal/client/config"
	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/dmitrijs2005/familyorganizer/internal/client/tokenstore"
	"github.com/dmitrijs2005/familyorganizer/internal/logging"
)

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func withPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) {
		require.NotEmpty(t, passwords, "unexpected password prompt")
		pw := passwords[0]
		passwords = passwords[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func testConfig(srv *apitest.Server) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = srv.BaseURL()
	cfg.Ephemeral = true
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	app.out = io.Discard
	return app
}

func startServer(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	return srv
}

func loginAs(t *testing.T, app *App, username, password string) {
	t.Helper()
	_, err := app.authService.Login(context.Background(), username, password)
	require.NoError(t, err)
}

func joined(lines *[]string) string {
	return strings.Join(*lines, "\n")
}

func TestApp_RegisterThenLogin(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	app := newTestApp(t, testConfig(srv))

	app.reader = readerFromLines("carol", "carol")
	withPasswords(t, "passw0rd", "passw0rd", "passw0rd")

	require.NoError(t, app.Register(context.Background()))
	assert.False(t, app.isLoggedIn())

	require.NoError(t, app.Login(context.Background()))
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, "(carol)", app.status())

	assert.Contains(t, *out, "Account carol created, you can log in now")
	assert.Contains(t, *out, "Welcome, carol")
}

func TestApp_RegisterPasswordMismatch(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	app := newTestApp(t, testConfig(srv))

	app.reader = readerFromLines("carol")
	withPasswords(t, "passw0rd", "different1")

	require.Error(t, app.Register(context.Background()))
	assert.Contains(t, *out, "Error: passwords do not match")
	assert.Zero(t, srv.Hits("POST", "/api/auth/register"))
}

func TestApp_LoginShowsServerMessage(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	srv.AddUser("alice", "secret12", models.RoleUser)
	app := newTestApp(t, testConfig(srv))

	app.reader = readerFromLines("alice")
	withPasswords(t, "wrong999")

	require.Error(t, app.Login(context.Background()))
	assert.False(t, app.isLoggedIn())
	assert.Contains(t, *out, "Error: Invalid username or password")
}

func TestApp_StatusAndLoading(t *testing.T) {
	captureOutput(t)
	srv := startServer(t)
	srv.AddUser("root", "admin123", models.RoleAdmin)
	app := newTestApp(t, testConfig(srv))

	assert.Equal(t, "", app.status())
	loginAs(t, app, "root", "admin123")
	assert.Equal(t, "(root admin)", app.status())

	_ = app.busy(func() error {
		assert.Equal(t, "(root admin loading)", app.status())
		return nil
	})
	assert.Equal(t, "(root admin)", app.status())
}

func TestApp_LogoutAndMe(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	srv.AddUser("alice", "secret12", models.RoleUser)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	require.NoError(t, app.Me(context.Background()))
	assert.Contains(t, joined(out), "alice (USER)")

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.isLoggedIn())
	assert.Contains(t, *out, "Logged out")
	assert.NotContains(t, *out, "Session ended, please log in again")
}

func TestApp_EditProfile(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	srv.AddUser("alice", "secret12", models.RoleUser)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	app.reader = readerFromLines("alice@example.com", "Alice", "", "34")
	require.NoError(t, app.EditProfile(context.Background()))

	text := joined(out)
	assert.Contains(t, text, "Profile saved")
	assert.Contains(t, text, "email: alice@example.com")
	assert.Contains(t, text, "age: 34")
}

func TestApp_EditProfileRejectsBadAge(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	srv.AddUser("alice", "secret12", models.RoleUser)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	app.reader = readerFromLines("", "", "", "old")
	require.Error(t, app.EditProfile(context.Background()))
	assert.Contains(t, *out, "Error: age must be a whole number")
	assert.Zero(t, srv.Hits("PATCH", "/api/users/me/profile"))
}

func TestApp_ChangePassword(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	srv.AddUser("alice", "secret12", models.RoleUser)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	withPasswords(t, "secret12", "better34", "better34")
	require.NoError(t, app.ChangePassword(context.Background()))
	assert.Contains(t, *out, "Password changed")
}

func seed(srv *apitest.Server) {
	srv.AddUser("alice", "secret12", models.RoleUser)
	srv.AddRecipe(models.Recipe{ID: 1, Title: "Pancakes", Owner: "bob", UpdatedAt: "2024-01-01T10:00:00",
		Tags: []models.RecipeTag{models.TagBreakfast}})
	srv.AddRecipe(models.Recipe{ID: 2, Title: "Apple Pie", Owner: "alice", UpdatedAt: "2024-02-01T10:00:00",
		Tags: []models.RecipeTag{models.TagDessert}})
}

func TestApp_Recipes(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	seed(srv)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	require.NoError(t, app.Recipes(context.Background(), []string{"pan"}))
	text := joined(out)
	assert.Contains(t, text, "Pancakes")
	assert.NotContains(t, text, "Apple Pie")

	*out = nil
	require.NoError(t, app.Recipes(context.Background(), []string{"--tag=dessert"}))
	text = joined(out)
	assert.Contains(t, text, "Apple Pie")
	assert.NotContains(t, text, "Pancakes")

	*out = nil
	require.NoError(t, app.Recipes(context.Background(), []string{"--sort", "owner_asc"}))
	text = joined(out)
	assert.Less(t, strings.Index(text, "Apple Pie"), strings.Index(text, "Pancakes"))

	*out = nil
	require.NoError(t, app.Recipes(context.Background(), []string{"zzz"}))
	assert.Contains(t, *out, "No recipes found")

	*out = nil
	require.Error(t, app.Recipes(context.Background(), []string{"--sort", "random"}))
	assert.Contains(t, joined(out), `unknown sort mode "random"`)

	assert.Equal(t, 1, srv.Hits("GET", "/api/recipes"))
}

func TestApp_ShowAndErrors(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	seed(srv)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	require.NoError(t, app.Show(context.Background(), []string{"2"}))
	text := joined(out)
	assert.Contains(t, text, "#2 Apple Pie")
	assert.Contains(t, text, "(you can edit or delete this recipe)")

	*out = nil
	require.Error(t, app.Show(context.Background(), []string{"99"}))
	assert.Contains(t, *out, "Error: not found")

	*out = nil
	require.Error(t, app.Show(context.Background(), nil))
	assert.Contains(t, *out, "Error: a numeric recipe id is required")
}

func TestApp_AddEditDelete(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	srv.AddUser("alice", "secret12", models.RoleUser)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	app.reader = readerFromLines("Soup", "water", "salt", "", "Boil.", "", "lunch, vegetarian")
	require.NoError(t, app.Add(context.Background()))
	assert.Contains(t, *out, "Recipe 1 created")

	r, ok := srv.Recipe(1)
	require.True(t, ok)
	assert.Equal(t, "alice", r.Owner)
	assert.Equal(t, []string{"water", "salt"}, r.Ingredients)
	assert.Equal(t, "Boil.", r.Instruction)
	assert.Equal(t, []models.RecipeTag{models.TagLunch, models.TagVegetarian}, r.Tags)

	app.reader = readerFromLines("Veggie soup", "", "", "none")
	require.NoError(t, app.Edit(context.Background(), []string{"1"}))
	assert.Contains(t, *out, "Recipe 1 saved")

	r, ok = srv.Recipe(1)
	require.True(t, ok)
	assert.Equal(t, "Veggie soup", r.Title)
	assert.Equal(t, []string{"water", "salt"}, r.Ingredients)
	assert.Empty(t, r.Tags)

	app.reader = readerFromLines("n")
	require.NoError(t, app.Delete(context.Background(), []string{"1"}))
	assert.Contains(t, *out, "Cancelled")
	_, ok = srv.Recipe(1)
	assert.True(t, ok)

	app.reader = readerFromLines("y")
	require.NoError(t, app.Delete(context.Background(), []string{"1"}))
	assert.Contains(t, *out, "Recipe 1 deleted")
	_, ok = srv.Recipe(1)
	assert.False(t, ok)
}

func TestApp_AddRejectsUnknownTag(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	srv.AddUser("alice", "secret12", models.RoleUser)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	app.reader = readerFromLines("Soup", "", "", "brunch")
	require.Error(t, app.Add(context.Background()))
	assert.Contains(t, joined(out), "unknown recipe tag")
	assert.Zero(t, srv.Hits("POST", "/api/recipes"))
}

func TestApp_EditOthersRecipeRefused(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	seed(srv)
	app := newTestApp(t, testConfig(srv))
	loginAs(t, app, "alice", "secret12")

	require.Error(t, app.Edit(context.Background(), []string{"1"}))
	assert.Contains(t, *out, "Error: not permitted to change this recipe")
	assert.Zero(t, srv.Hits("PATCH", "/api/recipes/1"))
}

func TestApp_TagsListed(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	app := newTestApp(t, testConfig(srv))

	require.NoError(t, app.Tags(context.Background()))
	assert.Contains(t, *out, "Tags: BREAKFAST, LUNCH, DINNER, DESSERT, SNACK, VEGETARIAN")
}

func TestApp_RunRestoresPersistedSession(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)
	srv.AddUser("alice", "secret12", models.RoleUser)

	dbPath := filepath.Join(t.TempDir(), "tokens.db")
	store, err := tokenstore.Open(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), srv.IssueToken("alice")))
	require.NoError(t, store.Close())

	cfg := testConfig(srv)
	cfg.Ephemeral = false
	cfg.TokenDB = dbPath
	app := newTestApp(t, cfg)
	app.reader = readerFromLines("me", "exit")

	require.NoError(t, app.Run(context.Background()))

	text := joined(out)
	assert.Contains(t, text, "Logged in as alice")
	assert.Contains(t, text, "alice (USER)")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestApp_RunDropsInvalidPersistedToken(t *testing.T) {
	out := captureOutput(t)
	srv := startServer(t)

	dbPath := filepath.Join(t.TempDir(), "tokens.db")
	store, err := tokenstore.Open(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), "garbage"))
	require.NoError(t, store.Close())

	cfg := testConfig(srv)
	cfg.Ephemeral = false
	cfg.TokenDB = dbPath
	app := newTestApp(t, cfg)
	app.reader = readerFromLines("exit")

	require.NoError(t, app.Run(context.Background()))
	assert.False(t, app.isLoggedIn())
	assert.Contains(t, *out, "Session ended, please log in again")

	store, err = tokenstore.Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer store.Close()
	_, ok, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
