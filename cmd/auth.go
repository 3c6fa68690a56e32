package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/session"
	"github.com/desertthunder/watchlog/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a session token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	if err := r.auth.Login(ctx, creds); err != nil {
		r.logger.Debug("login failed", "err", err)
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, services.MsgLoginFailed)
	}

	r.logger.Info("login successful", "username", creds.Username)
	return r.writePlain("✓ Logged in as %s\n", creds.Username)
}

// AuthRegister creates an account and stores its session token.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	if err := r.auth.Register(ctx, creds); err != nil {
		r.logger.Debug("register failed", "err", err)
		return fmt.Errorf("%w: %s", shared.ErrRegisterFailed, services.MsgRegisterFailed)
	}

	r.logger.Info("registration successful", "username", creds.Username)
	return r.writePlain("✓ Registered and logged in as %s\n", creds.Username)
}

// AuthLogout clears the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.auth.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

type authStatus struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired"`
	Opaque        bool       `json:"opaque,omitempty"`
	APIURL        string     `json:"api_url"`
}

// AuthStatus reports whether a token is stored and what it claims.
//
// The claims are read without verifying the signature; the server remains the authority.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := authStatus{
		Authenticated: session.Guard(r.session, session.RouteHome) != session.RouteLogin,
		APIURL:        r.config.API.BaseURL,
	}
	if status.Authenticated {
		claims, err := r.session.Claims()
		if err != nil {
			return err
		}
		status.Opaque = claims.Opaque
		if claims.Opaque {
			r.logger.Debug("stored token is not a JWT")
		} else {
			status.Subject = claims.Subject
			if !claims.ExpiresAt.IsZero() {
				exp := claims.ExpiresAt
				status.ExpiresAt = &exp
			}
			status.Expired = claims.Expired(time.Now())
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !status.Authenticated {
		return r.writePlain("✗ Not logged in\nAPI: %s\n", status.APIURL)
	}
	r.writePlain("✓ Logged in\n")
	if status.Subject != "" {
		r.writePlain("User: %s\n", status.Subject)
	}
	if status.ExpiresAt != nil {
		state := "valid"
		if status.Expired {
			state = "expired"
		}
		r.writePlain("Expires: %s (%s)\n", status.ExpiresAt.Local().Format(time.RFC1123), state)
	}
	return r.writePlain("API: %s\n", status.APIURL)
}

// credentials reads --username and --password, prompting on stdin for a missing password.
func (r *Runner) credentials(cmd *cli.Command) (services.Credentials, error) {
	creds := services.Credentials{
		Username: strings.TrimSpace(cmd.String("username")),
		Password: cmd.String("password"),
	}
	if creds.Username == "" {
		return creds, fmt.Errorf("%w: --username", shared.ErrMissingArgument)
	}
	if creds.Password == "" {
		r.writePlain("Password: ")
		line, err := bufio.NewReader(r.input).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return creds, fmt.Errorf("%w: --password", shared.ErrMissingArgument)
		}
		creds.Password = strings.TrimRight(line, "\r\n")
	}
	if creds.Password == "" {
		return creds, fmt.Errorf("%w: --password", shared.ErrMissingArgument)
	}
	return creds, nil
}
