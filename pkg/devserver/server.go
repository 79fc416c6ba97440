// Package devserver is an in-memory stand-in for the admin API. It speaks the
// same envelopes, issues HS256 access tokens that can be expired on demand,
// and can be told to fail specific routes. `backstage dev-server` runs it
// locally; tests mount its Handler on httptest.
package devserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/store"
)

// Default dev login.
const (
	DefaultEmail    = "admin@label.example"
	DefaultPassword = "backstage"
)

// Stats counts what the server has seen.
type Stats struct {
	Requests  int
	Logins    int
	Refreshes int
}

type account struct {
	password string
	user     store.User
}

type fault struct {
	method  string
	prefix  string
	status  int
	message string
	delay   time.Duration
}

// Server is the dev API.
type Server struct {
	e      *echo.Echo
	logger *zap.Logger
	secret []byte
	ttl    time.Duration

	mu          sync.Mutex
	accounts    map[string]account
	refresh     map[string]string // refresh token -> email
	generation  int
	collections map[string]*collection
	faults      []fault
	stats       Stats
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing key. The default is random per process.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		if len(secret) > 0 {
			s.secret = secret
		}
	}
}

// WithAccessTTL sets the lifetime of access tokens.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithAccount adds a login.
func WithAccount(email, password string, u store.User) Option {
	return func(s *Server) {
		if u.Email == "" {
			u.Email = email
		}
		if u.ID == "" {
			u.ID = newObjectID()
		}
		s.accounts[strings.ToLower(email)] = account{password: password, user: u}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a Server with one collection per catalog resource and the
// default admin account.
func New(opts ...Option) *Server {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	s := &Server{
		e:           echo.New(),
		logger:      zap.NewNop(),
		secret:      secret,
		ttl:         15 * time.Minute,
		accounts:    map[string]account{},
		refresh:     map[string]string{},
		collections: map[string]*collection{},
	}
	WithAccount(DefaultEmail, DefaultPassword, store.User{Name: "Dev Admin", Role: "admin"})(s)
	for _, opt := range opts {
		opt(s)
	}
	for _, res := range entity.All() {
		s.collections[res.Name] = newCollection(res)
	}

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.HTTPErrorHandler = s.errorHandler
	s.e.Use(s.logRequests, s.injectFaults)
	s.routes()
	return s
}

// Handler returns the HTTP handler, for httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("dev server listening", zap.String("addr", addr))
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Seed adds documents to a resource. Documents without an _id get one.
func (s *Server) Seed(name string, docs ...entity.Entity) error {
	res, err := entity.Lookup(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collections[res.Name]
	for _, d := range docs {
		c.insert(d.Clone())
	}
	return nil
}

// Docs returns copies of every document in a resource.
func (s *Server) Docs(name string) []entity.Entity {
	res, err := entity.Lookup(name)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.CloneAll(s.collections[res.Name].docs)
}

// Fail makes every request whose method matches (empty matches any) and whose
// path starts with prefix answer status with message, until ClearFaults.
func (s *Server) Fail(method, prefix string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{method: method, prefix: prefix, status: status, message: message})
}

// Slow holds every matching request for d before serving it, until
// ClearFaults.
func (s *Server) Slow(method, prefix string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{method: method, prefix: prefix, delay: d})
}

// ClearFaults removes every injected failure.
func (s *Server) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = nil
}

// Stats returns the counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	_ = c.JSON(status, echo.Map{"message": msg})
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		s.mu.Lock()
		s.stats.Requests++
		s.mu.Unlock()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.logger.Debug("dev request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.String("request_id", c.Request().Header.Get("X-Request-ID")),
			zap.Duration("elapsed", time.Since(start)))
		return nil
	}
}

func (s *Server) injectFaults(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var delay time.Duration
		s.mu.Lock()
		for _, f := range s.faults {
			if (f.method != "" && f.method != req.Method) || !strings.HasPrefix(req.URL.Path, f.prefix) {
				continue
			}
			if f.delay > 0 {
				delay += f.delay
				continue
			}
			s.mu.Unlock()
			return c.JSON(f.status, echo.Map{"message": f.message})
		}
		s.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return req.Context().Err()
			}
		}
		return next(c)
	}
}

func newObjectID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
