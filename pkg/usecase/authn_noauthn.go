package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// NoAuthnUseCase authenticates every request as one fixed user (for development/testing)
type NoAuthnUseCase struct {
	repo   interfaces.Repository
	userID types.UserID
}

// NewNoAuthnUseCase creates a NoAuthnUseCase. An empty userID acts as the
// anonymous admin.
func NewNoAuthnUseCase(repo interfaces.Repository, userID types.UserID) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		repo:   repo,
		userID: userID,
	}
}

// Register is not available in no-auth mode
func (uc *NoAuthnUseCase) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	return nil, goerr.New("registration is disabled in no-auth mode")
}

// Login returns the fixed user without checking credentials
func (uc *NoAuthnUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	token, err := uc.ValidateToken(ctx, "")
	if err != nil {
		return nil, err
	}
	user, err := uc.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, ExpiresAt: token.ExpiresAt}, nil
}

// ValidateToken always returns a token for the fixed user. A user that
// exists in the repository keeps its name and role.
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, raw string) (*auth.Token, error) {
	if uc.userID == "" || uc.userID == auth.AnonymousUserID {
		return auth.NewAnonymousUser(), nil
	}

	user, err := uc.repo.User().Get(ctx, uc.userID)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to get no-auth user", goerr.V(UserIDKey, uc.userID))
		}
		token := auth.NewAnonymousUser()
		token.ID = auth.TokenID(uc.userID)
		token.Sub = uc.userID
		token.Name = uc.userID.String()
		return token, nil
	}

	return auth.NewToken(user.ID, user.Email, user.Name, user.Role), nil
}

// Me returns the stored user or a synthesized one
func (uc *NoAuthnUseCase) Me(ctx context.Context, token *auth.Token) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, token.Sub)
	if err == nil {
		return user.Public(), nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, token.Sub))
	}
	return &model.User{
		ID:    token.Sub,
		Email: token.Email,
		Name:  token.Name,
		Role:  token.Role,
	}, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
