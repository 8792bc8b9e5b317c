package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// RefreshTokenRepository keeps issued refresh tokens in process memory.
// Tokens expire on their own; a restart logs everyone out of refresh, which
// is acceptable for this store the same way room membership is ephemeral.
type RefreshTokenRepository struct {
	cache *cache.Cache
}

func NewRefreshTokenRepository(ttl time.Duration) *RefreshTokenRepository {
	c := cache.New(ttl, 10*time.Minute)
	return &RefreshTokenRepository{
		cache: c,
	}
}

func (r *RefreshTokenRepository) Save(token string, userId uuid.UUID) {
	r.cache.Set(token, userId, cache.DefaultExpiration)
}

func (r *RefreshTokenRepository) Get(token string) (uuid.UUID, bool) {
	if x, found := r.cache.Get(token); found {
		return x.(uuid.UUID), true
	}
	return uuid.Nil, false
}

func (r *RefreshTokenRepository) Delete(token string) {
	r.cache.Delete(token)
}
