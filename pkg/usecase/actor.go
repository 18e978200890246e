package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// actor returns the user making the request, or the anonymous user
func actor(ctx context.Context) types.UserID {
	if token, ok := auth.TokenFromContext(ctx); ok {
		return token.Sub
	}
	return auth.AnonymousUserID
}

func requireAdmin(ctx context.Context) error {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return goerr.Wrap(ErrForbidden, "no authenticated user")
	}
	if !token.IsAdmin() {
		return goerr.Wrap(ErrForbidden, "user is not an admin", goerr.V(UserIDKey, token.Sub))
	}
	return nil
}
