package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/dto"
)

// Login exchanges credentials for an access token and the Holidaze profile
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	env, err := call[dto.LoginResponse](ctx, c, request{
		op:     "login",
		method: http.MethodPost,
		auth:   true,
		path:   "/auth/login",
		query:  url.Values{"_holidaze": {"true"}},
		body:   dto.LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Register creates a profile. It does not log in.
func (c *Client) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.Profile, error) {
	env, err := call[domain.Profile](ctx, c, request{
		op:     "register",
		method: http.MethodPost,
		auth:   true,
		path:   "/auth/register",
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateAPIKey creates an API key for the logged in user
func (c *Client) CreateAPIKey(ctx context.Context, name string) (*dto.APIKeyResponse, error) {
	env, err := call[dto.APIKeyResponse](ctx, c, request{
		op:           "create_api_key",
		method:       http.MethodPost,
		auth:         true,
		path:         "/auth/create-api-key",
		body:         dto.CreateAPIKeyRequest{Name: name},
		requireToken: true,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}
