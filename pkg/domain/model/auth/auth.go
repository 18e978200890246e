package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// TokenID is the unique identifier (jti) of an issued access token
type TokenID string

// NewTokenID generates a new token ID
func NewTokenID() TokenID {
	return TokenID(uuid.NewString())
}

func (x TokenID) String() string {
	return string(x)
}

// Token is the authenticated identity carried by a request
type Token struct {
	ID        TokenID        `json:"id"`
	Sub       types.UserID   `json:"sub"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      types.UserRole `json:"role"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// DefaultTokenTTL is the lifetime of an access token
const DefaultTokenTTL = 24 * time.Hour

// NewToken creates a token for the given user that expires after DefaultTokenTTL
func NewToken(sub types.UserID, email, name string, role types.UserRole) *Token {
	return &Token{
		ID:        NewTokenID(),
		Sub:       sub,
		Email:     email,
		Name:      name,
		Role:      role,
		ExpiresAt: time.Now().Add(DefaultTokenTTL),
	}
}

// IsExpired checks if the token is expired
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsAdmin reports whether the token holder has the admin role
func (t *Token) IsAdmin() bool {
	return t.Role == types.UserRoleAdmin
}

// AnonymousUserID is used when authentication is disabled and no user is given
const AnonymousUserID types.UserID = "anonymous"

// NewAnonymousUser creates a token for anonymous access in no-auth mode
func NewAnonymousUser() *Token {
	return &Token{
		ID:        "anonymous",
		Sub:       AnonymousUserID,
		Email:     "anonymous@localhost",
		Name:      "Anonymous",
		Role:      types.UserRoleAdmin,
		ExpiresAt: time.Now().Add(DefaultTokenTTL),
	}
}

type ctxTokenKey struct{}

// ContextWithToken returns a new context with the token
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext retrieves the token from context
func TokenFromContext(ctx context.Context) (*Token, bool) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	return token, ok && token != nil
}
