package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/watchlog/internal/shared"
)

// User-facing messages for failed authentication. Server details are never shown.
const (
	MsgLoginFailed    = "Sorry, your credentials were incorrect."
	MsgRegisterFailed = "Error: username already exists."
)

// Credentials is the login/register request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// AuthService obtains and drops session tokens.
type AuthService struct {
	client *Client
}

// NewAuthService creates an [AuthService] on top of client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login exchanges credentials for a token and stores it in the session.
//
// Any failure is reported as [shared.ErrAuthFailed]; callers show [MsgLoginFailed].
func (a *AuthService) Login(ctx context.Context, creds Credentials) error {
	if err := a.authenticate(ctx, "/auth/login", creds); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return nil
}

// Register creates an account and stores the issued token.
//
// Any failure is reported as [shared.ErrRegisterFailed]; callers show [MsgRegisterFailed].
func (a *AuthService) Register(ctx context.Context, creds Credentials) error {
	if err := a.authenticate(ctx, "/auth/register", creds); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRegisterFailed, err)
	}
	return nil
}

// Logout clears the session.
func (a *AuthService) Logout() error {
	return a.client.session.ClearToken()
}

func (a *AuthService) authenticate(ctx context.Context, path string, creds Credentials) error {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}

	var out tokenResponse
	err := a.client.DoJSON(ctx, http.MethodPost, path, nil, creds, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) || IsUnauthorized(err) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if out.Token == "" {
		return fmt.Errorf("%w: response carried no token", shared.ErrAPIRequest)
	}

	return a.client.session.SetToken(out.Token)
}
