// Package apitest runs an in-process fake of the family organizer REST API
// for tests. It keeps users and recipes in memory, issues HS256 JWTs, hashes
// passwords with bcrypt and enforces ownership on recipe mutations the way
// the real server does, so client code can be exercised end to end.
package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const timeLayout = "2006-01-02T15:04:05"

var errInvalidToken = errors.New("invalid token")

type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

type account struct {
	user models.User
	hash []byte
}

type failure struct {
	status  int
	message string
}

// Server is a fake API. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	clock    time.Time
	nextUser int64
	nextRec  int64
	users    map[string]*account
	recipes  map[int64]*models.Recipe
	failures map[string][]failure
	hits     map[string]int
	gates    map[string]chan struct{}
}

// New starts a fake API; it is closed when the test ends via Close.
func New() *Server {
	s := &Server{
		secret:   []byte("apitest-secret"),
		clock:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		users:    make(map[string]*account),
		recipes:  make(map[int64]*models.Recipe),
		failures: make(map[string][]failure),
		hits:     make(map[string]int),
		gates:    make(map[string]chan struct{}),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// BaseURL is the value to configure the client with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.track)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/users/me", s.handleMe)
			r.Patch("/users/me/profile", s.handleProfile)
			r.Patch("/users/me/password", s.handlePassword)

			r.Get("/recipes", s.handleListRecipes)
			r.Post("/recipes", s.handleCreateRecipe)
			r.Get("/recipes/{id}", s.handleGetRecipe)
			r.Patch("/recipes/{id}", s.handleUpdateRecipe)
			r.Delete("/recipes/{id}", s.handleDeleteRecipe)
		})
	})
	return r
}

func routeKey(method, path string) string {
	return method + " " + path
}

// track counts requests, waits on gates and serves queued failures.
func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, r.URL.Path)

		s.mu.Lock()
		s.hits[key]++
		gate := s.gates[key]
		var f *failure
		if q := s.failures[key]; len(q) > 0 {
			f = &q[0]
			s.failures[key] = q[1:]
		}
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		if f != nil {
			writeError(w, r, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FailNext makes the next request to method+path answer with status.
// Calls queue up.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, path)
	s.failures[key] = append(s.failures[key], failure{status: status, message: message})
}

// Hold blocks requests to method+path until the returned release func is called.
func (s *Server) Hold(method, path string) (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.gates[routeKey(method, path)] = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.gates, routeKey(method, path))
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Hits returns how many requests reached method+path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[routeKey(method, path)]
}

func (s *Server) tick() string {
	s.clock = s.clock.Add(time.Minute)
	return s.clock.Format(timeLayout)
}

// AddUser creates an account directly and returns it.
func (s *Server) AddUser(username, password string, role models.Role) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	now := s.tick()
	acc := &account{
		user: models.User{ID: s.nextUser, Username: username, Role: role, CreatedAt: now, UpdatedAt: now},
		hash: hash,
	}
	s.users[username] = acc
	return acc.user
}

// AddRecipe stores r as-is (ID assigned when zero) and returns it.
func (s *Server) AddRecipe(r models.Recipe) models.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		s.nextRec++
		r.ID = s.nextRec
	} else if r.ID > s.nextRec {
		s.nextRec = r.ID
	}
	if r.CreatedAt == "" {
		r.CreatedAt = s.tick()
	}
	if r.UpdatedAt == "" {
		r.UpdatedAt = r.CreatedAt
	}
	stored := r
	s.recipes[r.ID] = &stored
	return stored
}

// Recipe returns the stored recipe with id.
func (s *Server) Recipe(id int64) (models.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return models.Recipe{}, false
	}
	return *r, true
}

// IssueToken signs a token for username without checking a password.
func (s *Server) IssueToken(username string) string {
	tok, err := s.sign(username)
	if err != nil {
		panic(err)
	}
	return tok
}

func (s *Server) sign(username string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: username,
	})
	return t.SignedString(s.secret)
}

func (s *Server) usernameFromToken(raw string) (string, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !tok.Valid || c.Username == "" {
		return "", errInvalidToken
	}
	return c.Username, nil
}

type userCtxKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, r, http.StatusUnauthorized, "")
			return
		}
		username, err := s.usernameFromToken(raw)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "")
			return
		}

		s.mu.Lock()
		_, exists := s.users[username]
		s.mu.Unlock()
		if !exists {
			writeError(w, r, http.StatusUnauthorized, "")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithUser(r, username)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, models.ErrorBody{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func recipeID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}
