package mockapi

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/api"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/response"
)

const ctxProfileName = "profile_name"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// tokenIssuer signs and verifies HS256 access tokens
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t *tokenIssuer) issue(name, email string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":   name,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// verify returns the profile name in a valid token
func (t *tokenIssuer) verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// identify reads an optional bearer token. A present but invalid token is rejected.
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(header, bearerPrefix) || len(header) == len(bearerPrefix) {
			response.Unauthorized(c, "Invalid authorization header")
			return
		}
		name, err := s.tokens.verify(header[len(bearerPrefix):])
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				response.Unauthorized(c, "Token has expired")
				return
			}
			response.Unauthorized(c, "Invalid token")
			return
		}
		c.Set(ctxProfileName, name)
		c.Next()
	}
}

// requireAuth rejects anonymous requests
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxProfileName) == "" {
			response.Unauthorized(c, "No authorization header was found")
			return
		}
		c.Next()
	}
}

// requireAPIKey enforces the API key header on authenticated requests when the
// server was configured with a key
func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.APIKey == "" || c.GetString(ctxProfileName) == "" {
			c.Next()
			return
		}
		key := c.GetHeader(api.APIKeyHeader)
		if key == "" {
			response.Unauthorized(c, "No API key header was found")
			return
		}
		if key != s.cfg.APIKey && !s.store.KnownAPIKey(key) {
			response.Unauthorized(c, "Invalid API key")
			return
		}
		c.Next()
	}
}
