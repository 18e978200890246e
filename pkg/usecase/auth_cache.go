package usecase

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
)

const (
	authCacheTTL  = 5 * time.Minute
	authCacheSize = 4096
)

// authCache keeps verified tokens keyed by their raw string so repeated
// requests skip signature verification
type authCache struct {
	lru *expirable.LRU[string, *auth.Token]
}

func newAuthCache() *authCache {
	return &authCache{
		lru: expirable.NewLRU[string, *auth.Token](authCacheSize, nil, authCacheTTL),
	}
}

func (c *authCache) get(raw string, now time.Time) (*auth.Token, bool) {
	token, ok := c.lru.Get(raw)
	if !ok {
		return nil, false
	}
	if now.After(token.ExpiresAt) {
		c.lru.Remove(raw)
		return nil, false
	}
	return token, true
}

func (c *authCache) set(raw string, token *auth.Token) {
	c.lru.Add(raw, token)
}
