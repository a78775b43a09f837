package cache

import (
	"time"

	"pesagate/api/internal/domain"

	"pesagate/pkg/utils"
)

// callback results stay visible to the poller for this long after the
// webhook lands
const RESULT_TTL = 5 * time.Minute

// Results bridges the gap between webhook arrival and the polling client.
// Backed by the in-process store by default, by redis when configured.
type Results interface {
	Save(checkoutRequestId string, res *domain.CallbackResult) error
	// Find returns nil, nil when no entry exists
	Find(checkoutRequestId string) (*domain.CallbackResult, error)
	Delete(checkoutRequestId string) error
}

type MemoryResults struct {
	cache *Cache
}

func InitMemoryResults() *MemoryResults {
	return &MemoryResults{cache: InitStorage()}
}

func (m *MemoryResults) Save(checkoutRequestId string, res *domain.CallbackResult) error {
	m.cache.Set(checkoutRequestId, res, RESULT_TTL)
	return nil
}

func (m *MemoryResults) Find(checkoutRequestId string) (*domain.CallbackResult, error) {
	v := m.cache.Load(checkoutRequestId)
	if v == nil {
		return nil, nil
	}

	return utils.SafeCast[*domain.CallbackResult](v)
}

func (m *MemoryResults) Delete(checkoutRequestId string) error {
	m.cache.Del(checkoutRequestId)
	return nil
}
