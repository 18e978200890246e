package http_test

import (
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/riskregister/pkg/controller/http"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/repository/memory"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func newAuthClient(t *testing.T) *client {
	t.Helper()
	repo := memory.New()
	uc := usecase.New(repo, usecase.WithAuth(usecase.NewAuthUseCase(repo, "test-secret-0123456789")))
	return &client{t: t, server: httpctrl.New(uc)}
}

func TestAuthFlow(t *testing.T) {
	c := newAuthClient(t)

	t.Run("protected endpoint needs a token", func(t *testing.T) {
		gt.Number(t, c.do(http.MethodGet, "/api/v1/risks", nil, nil)).Equal(http.StatusUnauthorized)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		bad := *c
		bad.token = "not-a-jwt"
		gt.Number(t, bad.do(http.MethodGet, "/api/v1/risks", nil, nil)).Equal(http.StatusUnauthorized)
	})

	var registered usecase.AuthResult
	code := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "Alice@Example.com",
		"password": "correct-horse",
		"name":     "Alice",
	}, &registered)
	gt.Number(t, code).Equal(http.StatusCreated)
	gt.Value(t, registered.User.Role).Equal(types.UserRoleMember)
	gt.String(t, registered.Token).NotEqual("")

	t.Run("duplicate email", func(t *testing.T) {
		code := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email": "alice@example.com", "password": "another-pass", "name": "A",
		}, nil)
		gt.Number(t, code).Equal(http.StatusConflict)
	})

	t.Run("wrong password", func(t *testing.T) {
		code := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "alice@example.com", "password": "wrong-password",
		}, nil)
		gt.Number(t, code).Equal(http.StatusUnauthorized)
	})

	var login usecase.AuthResult
	code = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "correct-horse",
	}, &login)
	gt.Number(t, code).Equal(http.StatusOK)
	c.token = login.Token

	t.Run("me", func(t *testing.T) {
		var me struct {
			Email string `json:"email"`
		}
		gt.Number(t, c.do(http.MethodGet, "/api/v1/auth/me", nil, &me)).Equal(http.StatusOK)
		gt.Value(t, me.Email).Equal("alice@example.com")
	})

	t.Run("member can manage risks", func(t *testing.T) {
		gt.Number(t, c.do(http.MethodPost, "/api/v1/risks", map[string]any{"title": "R1"}, nil)).Equal(http.StatusCreated)
	})

	t.Run("member cannot write categories", func(t *testing.T) {
		gt.Number(t, c.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Ops"}, nil)).Equal(http.StatusForbidden)
		gt.Number(t, c.do(http.MethodPost, "/api/v1/frameworks", map[string]any{"name": "SOC2"}, nil)).Equal(http.StatusForbidden)
	})
}
