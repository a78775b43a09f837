package service

import (
	"fmt"
	"time"

	"pesagate/api/internal/domain"
	"pesagate/api/internal/repository"

	"gorm.io/gorm"
)

// in-memory repositories for service tests. tx is unused: the services only
// thread it through to the real repositories.

type fakeCallbacksRepo struct {
	rows map[string]*domain.CallbackResponses
}

func newFakeCallbacksRepo() *fakeCallbacksRepo {
	return &fakeCallbacksRepo{rows: make(map[string]*domain.CallbackResponses)}
}

func (r *fakeCallbacksRepo) UpsertByCheckoutID(_ *gorm.DB, row *domain.CallbackResponses) error {
	if prev, ok := r.rows[row.CheckoutRequestID]; ok {
		row.ID = prev.ID
	} else {
		row.ID = uint(len(r.rows) + 1)
	}

	copied := *row
	r.rows[row.CheckoutRequestID] = &copied
	return nil
}

func (r *fakeCallbacksRepo) FindByCheckoutID(_ *gorm.DB, checkoutRequestID string) (*domain.CallbackResponses, error) {
	row, ok := r.rows[checkoutRequestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *fakeCallbacksRepo) FindForBranch(_ *gorm.DB, checkoutRequestID string, branchID uint) (*domain.CallbackResponses, error) {
	row, ok := r.rows[checkoutRequestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if row.BranchID != nil && *row.BranchID != branchID {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *fakeCallbacksRepo) MarkProcessed(_ *gorm.DB, checkoutRequestID string, at time.Time) error {
	row, ok := r.rows[checkoutRequestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Processed = true
	row.ProcessedAt = &at
	return nil
}

type fakeCallbackUrlsRepo struct {
	urls   []*domain.CallbackUrls
	nextID uint
}

func newFakeCallbackUrlsRepo() *fakeCallbackUrlsRepo {
	return &fakeCallbackUrlsRepo{}
}

func (r *fakeCallbackUrlsRepo) Create(_ *gorm.DB, url *domain.CallbackUrls) error {
	r.nextID++
	url.ID = r.nextID
	r.urls = append(r.urls, url)
	return nil
}

func (r *fakeCallbackUrlsRepo) Update(_ *gorm.DB, url *domain.CallbackUrls) error {
	for i, existing := range r.urls {
		if existing.ID == url.ID {
			r.urls[i] = url
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCallbackUrlsRepo) FindByTuple(_ *gorm.DB, scope domain.Scope, paymentType, provider string, env domain.Environment) (*domain.CallbackUrls, error) {
	for _, url := range r.urls {
		if url.Scope() == scope && url.PaymentType == paymentType && url.Provider == provider && url.Environment == env {
			return url, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCallbackUrlsRepo) List(_ *gorm.DB, scope domain.Scope, filter repository.CallbackUrlFilter) ([]domain.CallbackUrls, error) {
	var out []domain.CallbackUrls
	for _, url := range r.urls {
		if url.Scope() != scope {
			continue
		}
		if filter.PaymentType != "" && url.PaymentType != filter.PaymentType {
			continue
		}
		if filter.Provider != "" && url.Provider != filter.Provider {
			continue
		}
		if filter.Environment != nil && url.Environment != *filter.Environment {
			continue
		}
		out = append(out, *url)
	}
	return out, nil
}

func (r *fakeCallbackUrlsRepo) TouchByUrl(_ *gorm.DB, url string, at time.Time) error {
	for _, existing := range r.urls {
		if existing.Url == url && existing.IsActive {
			touched := at
			existing.LastReceivedAt = &touched
		}
	}
	return nil
}

type fakeCredentialsRepo struct {
	rows map[string]*domain.Credentials
}

func newFakeCredentialsRepo() *fakeCredentialsRepo {
	return &fakeCredentialsRepo{rows: make(map[string]*domain.Credentials)}
}

func credsKey(branchID uint, env domain.Environment) string {
	return fmt.Sprintf("%d:%d", branchID, env)
}

func (r *fakeCredentialsRepo) Upsert(_ *gorm.DB, creds *domain.Credentials) error {
	key := credsKey(creds.BranchID, creds.Environment)
	if prev, ok := r.rows[key]; ok {
		creds.ID = prev.ID
	} else {
		creds.ID = uint(len(r.rows) + 1)
	}

	copied := *creds
	r.rows[key] = &copied
	return nil
}

func (r *fakeCredentialsRepo) FindByBranch(_ *gorm.DB, branchID uint, env domain.Environment) (*domain.Credentials, error) {
	creds, ok := r.rows[credsKey(branchID, env)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return creds, nil
}
