package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/errutil"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// authMiddleware validates the bearer token of protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// For NoAuthn mode or when authUC is not configured, use the configured user
			if authUC == nil || authUC.IsNoAuthn() {
				token := auth.NewAnonymousUser()
				if authUC != nil {
					t, err := authUC.ValidateToken(r.Context(), "")
					if err != nil {
						errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
						return
					}
					token = t
				}
				next.ServeHTTP(w, r.WithContext(auth.ContextWithToken(r.Context(), token)))
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				errutil.HandleHTTP(r.Context(), w,
					goerr.Wrap(usecase.ErrInvalidToken, "authentication required"), http.StatusUnauthorized)
				return
			}

			token, err := authUC.ValidateToken(r.Context(), raw)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", token.Sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer" header
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
