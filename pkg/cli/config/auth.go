package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const minSecretLength = 16

// Auth holds CLI flags for token based authentication
type Auth struct {
	jwtSecret string
	tokenTTL  time.Duration
	noAuthUID string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Secret for signing access tokens (at least 16 bytes)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISKREGISTER_JWT_SECRET"),
			Destination: &x.jwtSecret,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Lifetime of issued access tokens",
			Category:    "Authentication",
			Value:       auth.DefaultTokenTTL,
			Sources:     cli.EnvVars("RISKREGISTER_TOKEN_TTL"),
			Destination: &x.tokenTTL,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the specified user ID (development only). Example: --no-auth=dev-admin",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISKREGISTER_NO_AUTH"),
			Destination: &x.noAuthUID,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("jwt-secret.len", len(x.jwtSecret)),
		slog.Duration("token-ttl", x.tokenTTL),
		slog.String("no-auth", x.noAuthUID),
	)
}

// IsNoAuthMode returns true if no-auth mode is enabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthUID != ""
}

// Configure returns NoAuthnUseCase in no-auth mode and the JWT based
// AuthUseCase otherwise
func (x *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if x.noAuthUID != "" {
		return usecase.NewNoAuthnUseCase(repo, types.UserID(x.noAuthUID)), nil
	}

	if x.jwtSecret == "" {
		return nil, goerr.Wrap(ErrMissingSecret, "set --jwt-secret or use --no-auth for development")
	}
	if len(x.jwtSecret) < minSecretLength {
		return nil, goerr.Wrap(ErrInvalidConfig, "jwt-secret is too short", goerr.V("min_length", minSecretLength))
	}

	return usecase.NewAuthUseCase(repo, x.jwtSecret, usecase.WithTokenTTL(x.tokenTTL)), nil
}

// AuthUseCase builds the password based use case regardless of no-auth
// mode. It is used to seed accounts.
func (x *Auth) AuthUseCase(repo interfaces.Repository) *usecase.AuthUseCase {
	return usecase.NewAuthUseCase(repo, x.jwtSecret, usecase.WithTokenTTL(x.tokenTTL))
}
