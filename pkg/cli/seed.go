package cli

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/cli/config"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var configPath string
	var repoCfg config.Repository
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Seed file (TOML)",
			Required:    true,
			Sources:     cli.EnvVars("RISKREGISTER_CONFIG"),
			Destination: &configPath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Create categories, frameworks and users from a seed file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			appCfg, err := config.LoadAppConfiguration(configPath)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(ctx); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			return seed(ctx, repo, authCfg.AuthUseCase(repo), appCfg)
		},
	}
}

// seed applies appCfg as the anonymous admin. Categories are upserted by
// ID, frameworks are matched by name and existing users are left alone.
func seed(ctx context.Context, repo interfaces.Repository, authUC *usecase.AuthUseCase, appCfg *config.AppConfig) error {
	logger := logging.Default()
	ctx = auth.ContextWithToken(ctx, auth.NewAnonymousUser())
	uc := usecase.New(repo)

	for _, cat := range appCfg.Categories {
		if _, err := uc.Category.UpsertCategory(ctx, usecase.CategoryInput{
			ID:          types.CategoryID(cat.ID),
			Name:        cat.Name,
			Description: cat.Description,
		}); err != nil {
			return goerr.Wrap(err, "failed to seed category", goerr.V(config.IDKey, cat.ID))
		}
	}

	for _, fw := range appCfg.Frameworks {
		_, created, err := uc.Framework.EnsureFramework(ctx, fw.Name, fw.Description)
		if err != nil {
			return goerr.Wrap(err, "failed to seed framework", goerr.V("name", fw.Name))
		}
		if created {
			logger.Info("Framework created", "name", fw.Name)
		}
	}

	for _, u := range appCfg.Users {
		user, err := authUC.CreateUser(ctx, u.Email, u.Password, u.Name, u.UserRole())
		if err != nil {
			if errors.Is(err, usecase.ErrEmailTaken) {
				logger.Info("User already exists", "email", u.Email)
				continue
			}
			return goerr.Wrap(err, "failed to seed user", goerr.V("email", u.Email))
		}
		logger.Info("User created", "id", user.ID, "email", user.Email, "role", user.Role)
	}

	logger.Info("Seed applied",
		"categories", len(appCfg.Categories),
		"frameworks", len(appCfg.Frameworks),
		"users", len(appCfg.Users),
	)
	return nil
}
