package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// CredentialCache wraps a CredentialStore and keeps the decrypted token in
// memory so refresh cycles do not hit the database on every request.
type CredentialCache struct {
	store driven.CredentialStore

	mu     sync.Mutex
	token  string
	loaded bool
}

func NewCredentialCache(store driven.CredentialStore) *CredentialCache {
	return &CredentialCache{store: store}
}

// Token returns the stored token, reading through to the underlying store on
// first use. It returns driven.ErrMissingToken when no token has been saved.
func (c *CredentialCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.token, nil
	}

	token, err := c.store.Read(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		// Absence is not cached so a token saved out of band is picked up.
		return "", driven.ErrMissingToken
	}

	c.token = token
	c.loaded = true
	return token, nil
}

func (c *CredentialCache) Save(ctx context.Context, token string) error {
	if err := c.store.Save(ctx, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.loaded = true
	c.mu.Unlock()
	return nil
}

func (c *CredentialCache) Delete(ctx context.Context) error {
	if err := c.store.Delete(ctx); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}

	c.mu.Lock()
	c.token = ""
	c.loaded = false
	c.mu.Unlock()
	return nil
}

func (c *CredentialCache) Has(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return true, nil
	}
	c.mu.Unlock()

	return c.store.Has(ctx)
}

// Invalidate drops the cached copy so the next Token call re-reads the store.
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.loaded = false
	c.mu.Unlock()
}
