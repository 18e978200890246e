package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCaseInterface is implemented by the password based AuthUseCase and
// by NoAuthnUseCase for development
type AuthUseCaseInterface interface {
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ValidateToken(ctx context.Context, raw string) (*auth.Token, error)
	Me(ctx context.Context, token *auth.Token) (*model.User, error)
	IsNoAuthn() bool
}

// AuthResult is returned by register and login
type AuthResult struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

const tokenIssuer = "riskregister"

type AuthUseCase struct {
	repo   interfaces.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	cache  *authCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithTokenTTL sets the lifetime of issued tokens
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		if ttl > 0 {
			uc.ttl = ttl
		}
	}
}

// WithAuthClock replaces time.Now for token issue and validation
func WithAuthClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

func NewAuthUseCase(repo interfaces.Repository, secret string, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:   repo,
		secret: []byte(secret),
		ttl:    auth.DefaultTokenTTL,
		now:    time.Now,
		cache:  newAuthCache(),
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// Register creates a member account and signs it in
func (uc *AuthUseCase) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	user, err := uc.createUser(ctx, email, password, name, types.UserRoleMember)
	if err != nil {
		return nil, err
	}
	return uc.issue(user)
}

// CreateUser adds an account with any role. It is used to seed users from
// the configuration file and issues no token.
func (uc *AuthUseCase) CreateUser(ctx context.Context, email, password, name string, role types.UserRole) (*model.User, error) {
	user, err := uc.createUser(ctx, email, password, name, role)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (uc *AuthUseCase) createUser(ctx context.Context, email, password, name string, role types.UserRole) (*model.User, error) {
	if len(password) < model.MinPasswordLength {
		return nil, goerr.Wrap(model.ErrInvalidValue, "password is too short",
			goerr.V(model.FieldKey, "password"),
			goerr.V("min_length", model.MinPasswordLength))
	}

	now := uc.now()
	user := &model.User{
		ID:        types.NewUserID(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}
	user.PasswordHash = string(hash)

	created, err := uc.repo.User().Create(ctx, user)
	if err != nil {
		if errors.Is(err, interfaces.ErrConflict) {
			return nil, goerr.Wrap(ErrEmailTaken, "email already registered", goerr.V(EmailKey, user.Email))
		}
		return nil, goerr.Wrap(err, "failed to create user", goerr.V(EmailKey, user.Email))
	}
	return created, nil
}

// Login checks the password and issues a new token. Unknown emails and
// wrong passwords fail the same way.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.repo.User().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrInvalidCredentials, "unknown email")
		}
		return nil, goerr.Wrap(err, "failed to get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, goerr.Wrap(ErrInvalidCredentials, "password mismatch", goerr.V(UserIDKey, user.ID))
	}

	return uc.issue(user)
}

// ValidateToken verifies signature and expiry of a bearer token
func (uc *AuthUseCase) ValidateToken(ctx context.Context, raw string) (*auth.Token, error) {
	if token, ok := uc.cache.get(raw, uc.now()); ok {
		return token, nil
	}

	parsed, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "failed to verify token", goerr.V("cause", err.Error()))
	}

	token := &auth.Token{
		ID:        auth.TokenID(parsed.JwtID()),
		Sub:       types.UserID(parsed.Subject()),
		ExpiresAt: parsed.Expiration(),
	}
	token.Email = stringClaim(parsed, "email")
	token.Name = stringClaim(parsed, "name")
	token.Role = types.UserRole(stringClaim(parsed, "role"))
	if token.Sub == "" || !token.Role.IsValid() {
		return nil, goerr.Wrap(ErrInvalidToken, "token misses required claims")
	}

	uc.cache.set(raw, token)
	return token, nil
}

// Me returns the account of the token holder
func (uc *AuthUseCase) Me(ctx context.Context, token *auth.Token) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, token.Sub)
	if err != nil {
		return nil, lookupErr(err, ErrUserNotFound, "failed to get user", goerr.V(UserIDKey, token.Sub))
	}
	return user.Public(), nil
}

func (uc *AuthUseCase) issue(user *model.User) (*AuthResult, error) {
	now := uc.now()
	expiresAt := now.Add(uc.ttl)

	tok, err := jwt.NewBuilder().
		JwtID(auth.NewTokenID().String()).
		Issuer(tokenIssuer).
		Subject(user.ID.String()).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("email", user.Email).
		Claim("name", user.Name).
		Claim("role", user.Role.String()).
		Build()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build token", goerr.V(UserIDKey, user.ID))
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign token", goerr.V(UserIDKey, user.ID))
	}

	return &AuthResult{
		User:      user.Public(),
		Token:     string(signed),
		ExpiresAt: expiresAt,
	}, nil
}

func stringClaim(tok jwt.Token, name string) string {
	v, ok := tok.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
