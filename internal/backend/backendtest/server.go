// Package backendtest provides an in-memory property-management backend for
// tests of the session core.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// Endpoint names used with Fail and Calls.
const (
	Login       = "login"
	Refresh     = "refresh"
	TokenInfo   = "token-info"
	CurrentUser = "current-user"
	Users       = "users"
	Screens     = "screens"
	Permissions = "permissions"
)

// Server is a fake backend served by httptest.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	users       map[models.ID]models.User
	passwords   map[string]string
	screens     map[models.ID]models.Screen
	permissions map[models.ID]models.Permission
	access      map[string]models.ID
	refresh     map[string]models.ID
	failures    map[string]int
	calls       map[string]int
	seq         int
	lastAccess  string
	lastRefresh string

	tokensInvalid bool

	// ExpiresIn is sent with every token pair, in seconds. Set before the first request.
	ExpiresIn int64
	// Envelope wraps every 2xx body in {"data": ...}. Set before the first request.
	Envelope bool
	// RefreshDelay delays refresh responses. Set before the first request.
	RefreshDelay time.Duration
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		users:       make(map[models.ID]models.User),
		passwords:   make(map[string]string),
		screens:     make(map[models.ID]models.Screen),
		permissions: make(map[models.ID]models.Permission),
		access:      make(map[string]models.ID),
		refresh:     make(map[string]models.ID),
		failures:    make(map[string]int),
		calls:       make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/auth/test-token", s.handleTokenInfo)
	mux.HandleFunc("GET /api/user/me", s.authorized(CurrentUser, s.handleCurrentUser))
	mux.HandleFunc("GET /api/user", s.authorized(Users, s.handleUsers))
	mux.HandleFunc("GET /api/screen", s.authorized(Screens, s.handleScreens))
	mux.HandleFunc("POST /api/screen", s.authorized(Screens, s.handleCreateScreen))
	mux.HandleFunc("DELETE /api/screen/{id}", s.authorized(Screens, s.handleDeleteScreen))
	mux.HandleFunc("GET /api/permission/user/{id}", s.authorized(Permissions, s.handlePermissions))
	mux.HandleFunc("POST /api/permission", s.authorized(Permissions, s.handleCreatePermission))
	mux.HandleFunc("DELETE /api/permission/{id}", s.authorized(Permissions, s.handleDeletePermission))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// Config returns the backend settings pointing at the fake.
func (s *Server) Config() config.Backend {
	return config.Backend{URL: s.URL + "/api/", Timeout: 5 * time.Second}
}

// AddUser registers a user that can log in with password.
func (s *Server) AddUser(u models.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
	s.passwords[u.Email] = password
}

// AddScreen adds a screen to the catalog.
func (s *Server) AddScreen(sc models.Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screens[sc.ID] = sc
}

// Grant creates a permission edge without going through the API.
func (s *Server) Grant(userID, screenID models.ID) models.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.grant(userID, screenID)
}

// Fail makes endpoint answer with status until Fail(endpoint, 0) is called.
func (s *Server) Fail(endpoint string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status == 0 {
		delete(s.failures, endpoint)
		return
	}

	s.failures[endpoint] = status
}

// Calls returns how often endpoint was requested.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[endpoint]
}

// SetTokensInvalid makes the token info endpoint answer {"valid": false}.
func (s *Server) SetTokensInvalid(invalid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokensInvalid = invalid
}

// RevokeAll invalidates every issued access and refresh token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = make(map[string]models.ID)
	s.refresh = make(map[string]models.ID)
}

// IssueTokens returns a fresh token pair for userID.
func (s *Server) IssueTokens(userID models.ID) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.issue(userID)
}

// LastIssued returns the most recently issued token pair.
func (s *Server) LastIssued() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastAccess, s.lastRefresh
}

// PermissionsOf returns the stored permission edges of userID.
func (s *Server) PermissionsOf(userID models.ID) []models.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.permissionsOf(userID)
}

func (s *Server) grant(userID, screenID models.ID) models.Permission {
	s.seq++

	p := models.Permission{
		ID:        models.ID(fmt.Sprintf("perm-%d", s.seq)),
		UserID:    userID,
		ScreenID:  screenID,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	s.permissions[p.ID] = p

	return p
}

func (s *Server) issue(userID models.ID) (string, string) {
	s.seq++

	access := fmt.Sprintf("access-%d", s.seq)
	refresh := fmt.Sprintf("refresh-%d", s.seq)

	s.access[access] = userID
	s.refresh[refresh] = userID
	s.lastAccess, s.lastRefresh = access, refresh

	return access, refresh
}

func (s *Server) permissionsOf(userID models.ID) []models.Permission {
	out := make([]models.Permission, 0)

	for _, p := range s.permissions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}

	return out
}

// hit counts the call and returns the configured failure status, if any.
func (s *Server) hit(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[endpoint]++

	return s.failures[endpoint]
}

func (s *Server) tokenPair(access, refresh string) map[string]any {
	pair := map[string]any{"accessToken": access, "refreshToken": refresh}
	if s.ExpiresIn > 0 {
		pair["expiresIn"] = s.ExpiresIn
	}

	return pair
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (s *Server) authorized(endpoint string, next func(http.ResponseWriter, *http.Request, models.ID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status := s.hit(endpoint); status != 0 {
			s.writeError(w, status, "injected failure")
			return
		}

		s.mu.Lock()
		userID, ok := s.access[bearer(r)]
		s.mu.Unlock()

		if !ok {
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r, userID)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(Login); status != 0 {
		s.writeError(w, status, "injected failure")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	password, ok := s.passwords[body.Email]
	if !ok || password != body.Password {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var user models.User

	for _, u := range s.users {
		if u.Email == body.Email {
			user = u
		}
	}

	access, refresh := s.issue(user.ID)

	resp := s.tokenPair(access, refresh)
	resp["user"] = user

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(Refresh); status != 0 {
		s.writeError(w, status, "injected failure")
		return
	}

	if s.RefreshDelay > 0 {
		time.Sleep(s.RefreshDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token := bearer(r)

	userID, ok := s.refresh[token]
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	delete(s.refresh, token)

	access, refresh := s.issue(userID)
	s.writeJSON(w, http.StatusOK, s.tokenPair(access, refresh))
}

func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(TokenInfo); status != 0 {
		s.writeError(w, status, "injected failure")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.access[bearer(r)]; !ok {
		s.writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"valid": !s.tokensInvalid})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, _ *http.Request, userID models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request, _ models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScreens(w http.ResponseWriter, _ *http.Request, _ models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Screen, 0, len(s.screens))
	for _, sc := range s.screens {
		out = append(out, sc)
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateScreen(w http.ResponseWriter, r *http.Request, _ models.ID) {
	var sc models.Screen

	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil || sc.Name == "" || sc.Route == "" {
		s.writeError(w, http.StatusBadRequest, "name and route are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	sc.ID = models.ID(fmt.Sprintf("screen-%d", s.seq))

	if sc.Status == "" {
		sc.Status = models.ScreenActive
	}

	s.screens[sc.ID] = sc
	s.writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) handleDeleteScreen(w http.ResponseWriter, r *http.Request, _ models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := models.ID(r.PathValue("id"))
	if _, ok := s.screens[id]; !ok {
		s.writeError(w, http.StatusNotFound, "screen not found")
		return
	}

	delete(s.screens, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePermissions(w http.ResponseWriter, r *http.Request, _ models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, s.permissionsOf(models.ID(r.PathValue("id"))))
}

func (s *Server) handleCreatePermission(w http.ResponseWriter, r *http.Request, _ models.ID) {
	var body struct {
		UserID   models.ID `json:"userId"`
		ScreenID models.ID `json:"screenId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[body.UserID]; !ok {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if _, ok := s.screens[body.ScreenID]; !ok {
		s.writeError(w, http.StatusNotFound, "screen not found")
		return
	}

	for _, p := range s.permissions {
		if p.UserID == body.UserID && p.ScreenID == body.ScreenID {
			s.writeError(w, http.StatusConflict, "permission already exists")
			return
		}
	}

	s.writeJSON(w, http.StatusCreated, s.grant(body.UserID, body.ScreenID))
}

func (s *Server) handleDeletePermission(w http.ResponseWriter, r *http.Request, _ models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := models.ID(r.PathValue("id"))
	if _, ok := s.permissions[id]; !ok {
		s.writeError(w, http.StatusNotFound, "permission not found")
		return
	}

	delete(s.permissions, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	if s.Envelope {
		v = map[string]any{"data": v}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"statusCode": status, "message": msg})
}
