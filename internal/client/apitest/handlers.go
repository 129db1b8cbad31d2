package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"golang.org/x/crypto/bcrypt"
)

func contextWithUser(r *http.Request, username string) context.Context {
	return context.WithValue(r.Context(), userCtxKey{}, username)
}

func currentUsername(r *http.Request) string {
	u, _ := r.Context().Value(userCtxKey{}).(string)
	return u
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	acc, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		writeError(w, r, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	tok, err := s.sign(req.Username)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{Token: tok, User: acc.user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	s.mu.Lock()
	_, exists := s.users[req.Username]
	s.mu.Unlock()
	if exists {
		writeError(w, r, http.StatusConflict, "Username is already taken")
		return
	}

	u := s.AddUser(req.Username, req.Password, models.RoleUser)
	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[currentUsername(r)].user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if !decode(w, r, &upd) {
		return
	}

	s.mu.Lock()
	acc := s.users[currentUsername(r)]
	if upd.Email != nil {
		acc.user.Email = upd.Email
	}
	if upd.FirstName != nil {
		acc.user.FirstName = upd.FirstName
	}
	if upd.LastName != nil {
		acc.user.LastName = upd.LastName
	}
	if upd.Age != nil {
		acc.user.Age = upd.Age
	}
	acc.user.UpdatedAt = s.tick()
	u := acc.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChange
	if !decode(w, r, &req) {
		return
	}
	if req.NewPassword != req.NewPasswordConfirm {
		writeError(w, r, http.StatusBadRequest, "Passwords do not match")
		return
	}

	s.mu.Lock()
	acc := s.users[currentUsername(r)]
	hash := acc.hash
	s.mu.Unlock()

	if bcrypt.CompareHashAndPassword(hash, []byte(req.CurrentPassword)) != nil {
		writeError(w, r, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "")
		return
	}

	s.mu.Lock()
	acc.hash = newHash
	acc.user.UpdatedAt = s.tick()
	u := acc.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.Recipe, 0, len(s.recipes))
	for _, rec := range s.recipes {
		out = append(out, *rec)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid recipe id")
		return
	}
	rec, found := s.Recipe(id)
	if !found {
		writeError(w, r, http.StatusNotFound, "")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req models.RecipeCreate
	if !decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, r, http.StatusBadRequest, "Title must not be blank")
		return
	}

	rec := s.AddRecipe(models.Recipe{
		Title:       req.Title,
		Owner:       currentUsername(r),
		Ingredients: req.Ingredients,
		Instruction: req.Instruction,
		Tags:        models.UniqueTags(req.Tags),
	})
	writeJSON(w, http.StatusCreated, rec)
}

// editable loads a recipe and checks the caller may change it.
func (s *Server) editable(w http.ResponseWriter, r *http.Request) (*models.Recipe, bool) {
	id, ok := recipeID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid recipe id")
		return nil, false
	}

	s.mu.Lock()
	rec, found := s.recipes[id]
	acc := s.users[currentUsername(r)]
	s.mu.Unlock()

	if !found {
		writeError(w, r, http.StatusNotFound, "")
		return nil, false
	}
	if acc.user.Role != models.RoleAdmin && acc.user.Username != rec.Owner {
		writeError(w, r, http.StatusForbidden, "")
		return nil, false
	}
	return rec, true
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.editable(w, r)
	if !ok {
		return
	}
	var upd models.RecipeUpdate
	if !decode(w, r, &upd) {
		return
	}
	if upd.Title != nil && *upd.Title == "" {
		writeError(w, r, http.StatusBadRequest, "Title must not be blank")
		return
	}

	s.mu.Lock()
	if upd.Title != nil {
		rec.Title = *upd.Title
	}
	if upd.Ingredients != nil {
		rec.Ingredients = *upd.Ingredients
	}
	if upd.Instruction != nil {
		rec.Instruction = *upd.Instruction
	}
	if upd.Tags != nil {
		rec.Tags = models.UniqueTags(*upd.Tags)
	}
	rec.UpdatedAt = s.tick()
	out := *rec
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.editable(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.recipes, rec.ID)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
