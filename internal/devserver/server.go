// Package devserver is an in-memory implementation of the CRM HTTP API for
// local development and tests. It is not the production server.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/leadr/internal/core/feed"
	"github.com/hay-kot/leadr/internal/core/lead"
)

// storedDateLayout mimics document stores that return full timestamps.
const storedDateLayout = "2006-01-02T15:04:05.000Z"

// Config configures the fake API.
type Config struct {
	Username string
	Password string
	Secret   string
	TokenTTL time.Duration
	Logger   zerolog.Logger
	// Users is served from /external-data. Nil serves SampleUsers.
	Users []feed.User
}

// Server holds the in-memory lead collection.
type Server struct {
	cfg   Config
	now   func() time.Time
	newID func() string

	mu    sync.RWMutex
	leads []lead.Lead
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Users == nil {
		cfg.Users = SampleUsers()
	}
	return &Server{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/leads", s.handleList)
		r.Post("/leads", s.handleCreate)
		r.Put("/leads/{id}", s.handleUpdate)
		r.Delete("/leads/{id}", s.handleDelete)
		r.Get("/external-data", s.handleExternal)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("dev-server request")
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if body.Username != s.cfg.Username || body.Password != s.cfg.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issueToken(body.Username)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) issueToken(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeMessage(w, http.StatusUnauthorized, "Missing token")
			return
		}

		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
			return []byte(s.cfg.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]lead.Lead, len(s.leads))
	copy(out, s.leads)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	l := lead.Lead{ID: s.newID(), Fields: fields}

	s.mu.Lock()
	s.leads = append(s.leads, l)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads[i].Fields = fields
			writeJSON(w, http.StatusOK, s.leads[i])
			return
		}
	}

	writeMessage(w, http.StatusNotFound, "Lead not found")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			writeMessage(w, http.StatusOK, "Lead deleted")
			return
		}
	}

	writeMessage(w, http.StatusNotFound, "Lead not found")
}

func (s *Server) handleExternal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Users)
}

// decodeFields reads and validates a lead body, writing a 400 on failure. The
// stored date carries a zero time of day, as a document store would return it.
func decodeFields(w http.ResponseWriter, r *http.Request) (lead.Fields, bool) {
	var fields lead.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return lead.Fields{}, false
	}

	if err := fields.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), lead.ErrValidation.Error()+": "))
		return lead.Fields{}, false
	}

	day, err := time.Parse(lead.DateLayout, fields.DateOfContact)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "dateOfContact: must be a date (YYYY-MM-DD)")
		return lead.Fields{}, false
	}
	fields.DateOfContact = day.UTC().Format(storedDateLayout)

	return fields, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// ErrMissingCredentials is returned by Validate when no login is configured.
var ErrMissingCredentials = errors.New("dev server requires a username and password")

// Validate checks that the server can authenticate anyone at all.
func (c Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	if c.Secret == "" {
		return errors.New("dev server requires a token secret")
	}
	return nil
}
