package repository

import (
	"time"

	"pesagate/api/internal/domain"

	"gorm.io/gorm"
)

type Credentials interface {
	// Upsert keys on (branch_id, environment)
	Upsert(tx *gorm.DB, creds *domain.Credentials) error
	FindByBranch(tx *gorm.DB, branchID uint, env domain.Environment) (*domain.Credentials, error)
}

type CallbackUrlFilter struct {
	PaymentType string
	Provider    string
	Environment *domain.Environment
}

type CallbackUrls interface {
	Create(tx *gorm.DB, url *domain.CallbackUrls) error
	Update(tx *gorm.DB, url *domain.CallbackUrls) error
	FindByTuple(tx *gorm.DB, scope domain.Scope, paymentType, provider string, env domain.Environment) (*domain.CallbackUrls, error)
	List(tx *gorm.DB, scope domain.Scope, filter CallbackUrlFilter) ([]domain.CallbackUrls, error)
	// TouchByUrl bumps last_received_at on every active row carrying the url
	TouchByUrl(tx *gorm.DB, url string, at time.Time) error
}

type Callbacks interface {
	// UpsertByCheckoutID keys on checkout_request_id: the provider delivers
	// at least once, redeliveries must not create duplicate rows
	UpsertByCheckoutID(tx *gorm.DB, row *domain.CallbackResponses) error
	FindByCheckoutID(tx *gorm.DB, checkoutRequestID string) (*domain.CallbackResponses, error)
	// FindForBranch prefers a branch-attributed row but tolerates rows the
	// ingestion could not attribute
	FindForBranch(tx *gorm.DB, checkoutRequestID string, branchID uint) (*domain.CallbackResponses, error)
	MarkProcessed(tx *gorm.DB, checkoutRequestID string, at time.Time) error
}

type Repositories struct {
	Credentials  Credentials
	CallbackUrls CallbackUrls
	Callbacks    Callbacks
}

func New() *Repositories {
	return &Repositories{
		Credentials:  InitCredentialsRepo(),
		CallbackUrls: InitCallbackUrlsRepo(),
		Callbacks:    InitCallbacksRepo(),
	}
}
