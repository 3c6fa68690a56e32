package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/desertthunder/watchlog/internal/server"
	"github.com/desertthunder/watchlog/internal/shared"
	"github.com/urfave/cli/v3"
)

// MockAPI serves the in-memory REST API until ctx ends.
func (r *Runner) MockAPI(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}

	store := server.NewStore()
	if seed := cmd.String("user"); seed != "" {
		name, password, ok := strings.Cut(seed, ":")
		if !ok || name == "" || password == "" {
			return fmt.Errorf("%w: --user must be name:password", shared.ErrInvalidFlag)
		}
		if err := store.CreateUser(name, password); err != nil {
			return err
		}
		r.logger.Info("seeded user", "username", name)
	}

	handler, err := server.NewAPI(server.APIOpts{
		Secret: r.config.Server.JWTSecret,
		Store:  store,
		Logger: r.logger,
	})
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	r.writePlain("Mock API listening on http://%s/api\n", addr)
	return server.Serve(ctx, addr, handler, r.logger)
}
