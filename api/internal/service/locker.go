package service

import (
	"time"

	"pesagate/api/internal/infra/cache"
)

type LockerService struct {
	cache *cache.Cache
}

func NewLockerService(cache *cache.Cache) *LockerService {
	return &LockerService{cache: cache}
}

func (s *LockerService) Lock(key string) {
	s.cache.SetNoExp(key, true)
}

// LockFor marks a key busy for a bounded time, used for the per-phone
// in-flight push marker
func (s *LockerService) LockFor(key string, ttl time.Duration) {
	s.cache.Set(key, true, ttl)
}

func (s *LockerService) Unlock(key string) {
	s.cache.Del(key)
}

func (s *LockerService) IsLocked(key string) bool {
	return s.cache.Load(key) != nil // locked if not nil
}
