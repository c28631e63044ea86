// internal/workers/application/reserve-submission/guard.go
package reservesubmission

import (
	"context"
	"sync"

	"application-intake/internal/common/database"
	"application-intake/internal/models"
)

// Guard reserves a user's single application slot. A reservation is only
// released when its submission was rejected before anything was stored.
type Guard interface {
	TryReserve(ctx context.Context, userID string, kind models.FormKind) (bool, error)
	Release(ctx context.Context, userID string) error
}

// Claimer is the durable claim operation of the application store.
type Claimer interface {
	Claim(ctx context.Context, userID string, kind models.FormKind) (bool, error)
	ReleaseClaim(ctx context.Context, userID string) error
}

// StoreGuard keeps claims in the application_claims table.
type StoreGuard struct {
	store Claimer
}

func NewStoreGuard(store Claimer) *StoreGuard {
	return &StoreGuard{store: store}
}

func (g *StoreGuard) TryReserve(ctx context.Context, userID string, kind models.FormKind) (bool, error) {
	return g.store.Claim(ctx, userID, kind)
}

func (g *StoreGuard) Release(ctx context.Context, userID string) error {
	return g.store.ReleaseClaim(ctx, userID)
}

// RedisGuard keeps claims as SETNX keys without expiry.
type RedisGuard struct {
	client    *database.RedisClient
	keyPrefix string
}

func NewRedisGuard(client *database.RedisClient, keyPrefix string) *RedisGuard {
	return &RedisGuard{client: client, keyPrefix: keyPrefix}
}

func (g *RedisGuard) TryReserve(ctx context.Context, userID string, kind models.FormKind) (bool, error) {
	return g.client.SetNX(ctx, g.keyPrefix+userID, string(kind), 0)
}

func (g *RedisGuard) Release(ctx context.Context, userID string) error {
	return g.client.Del(ctx, g.keyPrefix+userID)
}

// MemoryGuard keeps claims for the process lifetime only.
type MemoryGuard struct {
	claims sync.Map
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{}
}

func (g *MemoryGuard) TryReserve(_ context.Context, userID string, kind models.FormKind) (bool, error) {
	_, loaded := g.claims.LoadOrStore(userID, kind)
	return !loaded, nil
}

func (g *MemoryGuard) Release(_ context.Context, userID string) error {
	g.claims.Delete(userID)
	return nil
}
