// Package authtest runs an in-process fintrack auth backend for tests. It
// implements /auth/login/, /auth/register/, /auth/token/refresh/,
// /auth/me/ and /auth/update-user-data/ over an in-memory user table,
// issuing real HS256 access tokens and rotating opaque refresh tokens.
package authtest

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	LoginPath    = "/auth/login/"
	RegisterPath = "/auth/register/"
	RefreshPath  = "/auth/token/refresh/"
	MePath       = "/auth/me/"
	UpdatePath   = "/auth/update-user-data/"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Currency string `json:"currency,omitempty"`
}

type account struct {
	user     User
	password []byte
}

type refreshToken struct {
	userID  string
	expires time.Time
}

// Server is a fake backend. Zero values of the knobs give a well-behaved
// server; tests flip them to provoke failures.
type Server struct {
	*httptest.Server

	Secret []byte

	// OmitUser drops the user object from login/register responses, as
	// the production backend does.
	OmitUser atomic.Bool
	// RejectRefresh answers every refresh with 401.
	RejectRefresh atomic.Bool

	mu         sync.Mutex
	accounts   map[string]*account // by username
	refresh    map[string]refreshToken
	nextID     int
	accessTTL  time.Duration
	refreshTTL time.Duration

	callsMu sync.Mutex
	calls   map[string]int
}

// NewServer starts a backend. Close it with Close.
func NewServer() *Server {
	s := &Server{
		Secret:     []byte("authtest-secret"),
		accounts:   map[string]*account{},
		refresh:    map[string]refreshToken{},
		accessTTL:  time.Hour,
		refreshTTL: 24 * time.Hour,
		calls:      map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+LoginPath, s.login)
	mux.HandleFunc("POST "+RegisterPath, s.register)
	mux.HandleFunc("POST "+RefreshPath, s.refreshToken)
	mux.HandleFunc("GET "+MePath, s.me)
	mux.HandleFunc("PUT "+UpdatePath, s.update)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.callsMu.Lock()
		s.calls[r.URL.Path]++
		s.callsMu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return s
}

// Calls returns how many requests hit path.
func (s *Server) Calls(path string) int {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()
	return s.calls[path]
}

// AddUser creates an account directly.
func (s *Server) AddUser(username, password, currency string) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password, currency)
}

func (s *Server) addUserLocked(username, password, currency string) User {
	s.nextID++
	u := User{ID: strconv.Itoa(s.nextID), Username: username, Currency: currency}
	s.accounts[username] = &account{user: u, password: []byte(password)}
	return u
}

// SetAccessTTL sets the lifetime of access tokens issued from now on. A
// negative value issues tokens that are already expired.
func (s *Server) SetAccessTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTTL = d
}

// RevokeRefreshTokens forgets every issued refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refresh)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username, password := r.PostFormValue("username"), r.PostFormValue("password")

	s.mu.Lock()
	acc, ok := s.accounts[username]
	var u User
	var stored []byte
	if ok {
		u, stored = acc.user, acc.password
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid username")
		return
	}
	if subtle.ConstantTimeCompare(stored, []byte(password)) != 1 {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	s.writeSession(w, http.StatusOK, u)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	username, password := r.PostFormValue("username"), r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	s.mu.Lock()
	if _, taken := s.accounts[username]; taken {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Username already taken")
		return
	}
	u := s.addUserLocked(username, password, "")
	s.mu.Unlock()

	s.writeSession(w, http.StatusOK, u)
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeError(w, http.StatusBadRequest, "refresh is required")
		return
	}
	if s.RejectRefresh.Load() {
		writeError(w, http.StatusUnauthorized, "Refresh token rejected")
		return
	}

	s.mu.Lock()
	tok, ok := s.refresh[req.Refresh]
	delete(s.refresh, req.Refresh)
	s.mu.Unlock()
	if !ok || tok.expires.Before(time.Now()) {
		writeError(w, http.StatusUnauthorized, "Refresh token expired")
		return
	}

	access, refresh, err := s.issue(tok.userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	s.mu.Lock()
	u := acc.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var patch struct {
		Username *string `json:"username"`
		Currency *string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Username != nil && *patch.Username != acc.user.Username {
		if _, taken := s.accounts[*patch.Username]; taken {
			writeError(w, http.StatusBadRequest, "Username already taken")
			return
		}
		delete(s.accounts, acc.user.Username)
		acc.user.Username = *patch.Username
		s.accounts[acc.user.Username] = acc
	}
	if patch.Currency != nil {
		acc.user.Currency = *patch.Currency
	}
	writeJSON(w, http.StatusOK, map[string]User{"user": acc.user})
}

func (s *Server) authenticate(r *http.Request) (*account, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil, false
	}
	userID, err := UserIDFromToken(token, s.Secret)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == userID {
			return acc, true
		}
	}
	return nil, false
}

func (s *Server) writeSession(w http.ResponseWriter, status int, u User) {
	access, refresh, err := s.issue(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}
	body := map[string]any{"tokens": map[string]string{"access": access, "refresh": refresh}}
	if !s.OmitUser.Load() {
		body["user"] = u
	}
	writeJSON(w, status, body)
}

func (s *Server) issue(userID string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, err := GenerateToken(userID, s.Secret, time.Now().Add(s.accessTTL))
	if err != nil {
		return "", "", err
	}
	refresh := uuid.NewString()
	s.refresh[refresh] = refreshToken{userID: userID, expires: time.Now().Add(s.refreshTTL)}
	return access, refresh, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
