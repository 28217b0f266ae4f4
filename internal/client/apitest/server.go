// Package apitest provides an in-process fake of the teamhub REST API for
// tests. It issues HS256 JWT access tokens and rotating refresh tokens and
// counts the calls it receives.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	GoodToken = "good"

	EchoPath         = "/echo"
	AlwaysDeniedPath = "/always-401"
	BrokenPath       = "/boom"
)

type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type user struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Verified bool   `json:"emailVerified"`
	password string
}

type Server struct {
	*httptest.Server

	secret    []byte
	accessTTL time.Duration

	mu           sync.Mutex
	users        map[string]*user // by email
	access       map[string]string
	refresh      map[string]string
	hits         map[string]int
	refreshDelay time.Duration
	refreshFail  int
	refreshBody  string
	refreshAuth  []string
	logouts      []string
}

func NewServer(t testing.TB) *Server {
	s := &Server{
		secret:    []byte(uuid.NewString()),
		accessTTL: 5 * time.Minute,
		users:     make(map[string]*user),
		access:    make(map[string]string),
		refresh:   make(map[string]string),
		hits:      make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/refresh", s.refreshTokens)
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/verify-email", s.tokenAction("invalid verification token", "detail"))
	mux.HandleFunc("POST /auth/forgot-password", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mux.HandleFunc("POST /auth/reset-password", s.tokenAction("reset token expired", "errors"))
	mux.HandleFunc("POST /auth/logout", s.logout)
	mux.HandleFunc("GET /auth/me", s.protected(s.me))
	mux.HandleFunc("GET /teams", s.protected(s.teams))
	mux.HandleFunc("POST "+EchoPath, s.protected(s.echo))
	mux.HandleFunc("GET "+AlwaysDeniedPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "access denied"})
	})
	mux.HandleFunc("GET "+BrokenPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": map[string]string{"code": "E_DB"}})
	})

	s.Server = httptest.NewServer(s.count(mux))
	t.Cleanup(s.Close)
	return s
}

// AddUser registers a verified user and returns its id.
func (s *Server) AddUser(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{ID: uuid.NewString(), Email: email, Username: strings.Split(email, "@")[0], Verified: true, password: password}
	s.users[email] = u
	return u.ID
}

// Issue mints a token pair for userID as a login would.
func (s *Server) Issue(userID string) Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

// ExpireAccessTokens invalidates every access token issued so far.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	clear(s.access)
	s.mu.Unlock()
}

// FailRefresh makes the refresh endpoint answer with status and raw body.
// status 0 restores normal behavior; with status 200 the body is sent as is.
func (s *Server) FailRefresh(status int, body string) {
	s.mu.Lock()
	s.refreshFail = status
	s.refreshBody = body
	s.mu.Unlock()
}

// SetRefreshDelay holds every refresh response for d.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	s.refreshDelay = d
	s.mu.Unlock()
}

func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) RefreshCalls() int {
	return s.Hits("/auth/refresh")
}

// RefreshAuthHeaders returns the Authorization headers seen on refresh calls.
func (s *Server) RefreshAuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.refreshAuth...)
}

func (s *Server) RefreshTokenValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.refresh[token]
	return ok
}

func (s *Server) AccessTokenValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.access[token]
	return ok
}

func (s *Server) Logouts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logouts...)
}

func (s *Server) issueLocked(userID string) Pair {
	now := time.Now()
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	p := Pair{AccessToken: access, RefreshToken: uuid.NewString()}
	s.access[p.AccessToken] = userID
	s.refresh[p.RefreshToken] = userID
	return p
}

func (s *Server) userByIDLocked(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) protected(next func(w http.ResponseWriter, r *http.Request, u *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		userID, valid := s.access[token]
		u := s.userByIDLocked(userID)
		s.mu.Unlock()

		if !ok || !valid || u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		next(w, r, u)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	s.mu.Lock()
	u, ok := s.users[in.Email]
	if !ok || u.password != in.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid email or password"})
		return
	}
	p := s.issueLocked(u.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  p.AccessToken,
		"refreshToken": p.RefreshToken,
		"user":         u,
	})
}

func (s *Server) refreshTokens(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	s.refreshAuth = append(s.refreshAuth, r.Header.Get("Authorization"))
	delay, failStatus, failBody := s.refreshDelay, s.refreshFail, s.refreshBody
	s.mu.Unlock()

	time.Sleep(delay)

	if failStatus != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failStatus)
		_, _ = io.WriteString(w, failBody)
		return
	}

	s.mu.Lock()
	userID, ok := s.refresh[in.RefreshToken]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token revoked"})
		return
	}
	delete(s.refresh, in.RefreshToken)
	p := s.issueLocked(userID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []any{map[string]string{"field": "email"}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[in.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "email already registered"})
		return
	}
	s.users[in.Email] = &user{ID: uuid.NewString(), Email: in.Email, Username: in.Username, password: in.Password}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) tokenAction(failure, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Token != GoodToken {
			var v any = failure
			if field == "errors" {
				v = []string{failure}
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{field: v})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	s.logouts = append(s.logouts, in.RefreshToken)
	delete(s.refresh, in.RefreshToken)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) teams(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, []map[string]any{
		{"id": "t1", "name": u.Username + " Esports", "game": "Valorant", "members": 5},
		{"id": "t2", "name": "Academy", "game": "League of Legends", "members": 7},
	})
}

func (s *Server) echo(w http.ResponseWriter, r *http.Request, _ *user) {
	b, _ := io.ReadAll(r.Body)
	writeJSON(w, http.StatusOK, map[string]string{"body": string(b)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
