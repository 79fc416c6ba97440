package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type claims struct {
	Role       string `json:"role"`
	Generation int    `json:"gen"`
	jwt.RegisteredClaims
}

// IssueTokens signs an access token and a refresh token for email.
func (s *Server) IssueTokens(email string) (access, refresh string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(strings.ToLower(email))
}

func (s *Server) issueLocked(email string) (string, string, error) {
	acct, ok := s.accounts[email]
	if !ok {
		return "", "", fmt.Errorf("devserver: no account %q", email)
	}
	access, err := s.signLocked(email, acct.user.Role)
	if err != nil {
		return "", "", err
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	refresh := hex.EncodeToString(raw)
	s.refresh[refresh] = email
	return access, refresh, nil
}

func (s *Server) signLocked(email, role string) (string, error) {
	now := time.Now().UTC()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:       role,
		Generation: s.generation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        newObjectID(),
		},
	})
	return t.SignedString(s.secret)
}

// InvalidateAccessTokens makes every access token issued so far answer 401.
// Refresh tokens stay valid.
func (s *Server) InvalidateAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// RevokeRefreshTokens forgets every refresh token, so the next refresh fails.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = map[string]string{}
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
		}
		var cl claims
		tok, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), &cl, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !tok.Valid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "jwt expired"})
		}
		s.mu.Lock()
		stale := cl.Generation != s.generation
		s.mu.Unlock()
		if stale {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "jwt expired"})
		}
		c.Set("email", cl.Subject)
		return next(c)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok || acct.password != req.Password {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}
	access, refresh, err := s.issueLocked(email)
	if err != nil {
		return err
	}
	s.stats.Logins++
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         acct.user,
	}})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) refreshToken(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Refreshes++
	email, ok := s.refresh[req.RefreshToken]
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid refresh token"})
	}
	access, err := s.signLocked(email, s.accounts[email].user.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"accessToken": access}})
}

func (s *Server) logout(c echo.Context) error {
	var req refreshRequest
	_ = c.Bind(&req)
	s.mu.Lock()
	delete(s.refresh, req.RefreshToken)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"message": "Logged out"}})
}

func (s *Server) me(c echo.Context) error {
	email, _ := c.Get("email").(string)
	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": acct.user})
}
