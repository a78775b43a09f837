package service

import (
	"context"
	"time"

	"pesagate/api/internal/config"
	"pesagate/api/internal/domain"
	"pesagate/api/internal/infra/cache"
	"pesagate/api/internal/logger"
	"pesagate/api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Daraja interface {
	Token(ctx context.Context, creds *domain.Credentials) (string, error)
	// InitiateStkPush never returns a Go error: every failure is classified
	// into the result so the operator UI gets an actionable message
	InitiateStkPush(ctx context.Context, creds *domain.Credentials, phone string, amount decimal.Decimal, description string) *domain.StkPushResult
	QueryStkStatus(ctx context.Context, creds *domain.Credentials, checkoutRequestID string) (*domain.StkQueryResult, error)
	// advisory only, never authoritative
	OngoingTransaction(phone string) bool
}

type Callbacks interface {
	Ingest(tx *gorm.DB, payload []byte, meta domain.RequestMeta) (*domain.CallbackResponses, error)
}

type Reconciliation interface {
	SaveInitiation(res *domain.CallbackResult) error
	// Query returns nil, nil when no webhook has arrived yet
	Query(tx *gorm.DB, branchID uint, checkoutRequestID string) (*domain.CallbackResult, error)
	ClearCache(checkoutRequestID string) error
}

type Credentials interface {
	// Save upserts by (branch, environment) and auto-provisions the
	// matching callback url
	Save(tx *gorm.DB, creds *domain.Credentials) error
	FindByBranch(tx *gorm.DB, branchID uint, env domain.Environment) (*domain.Credentials, error)
}

type CallbackUrls interface {
	List(tx *gorm.DB, scope domain.Scope, filter repository.CallbackUrlFilter) ([]domain.CallbackUrls, error)
	UpdateUrl(tx *gorm.DB, scope domain.Scope, paymentType, provider string, env domain.Environment, newUrl string) (*domain.CallbackUrls, error)
	Verify(tx *gorm.DB, scope domain.Scope, paymentType, provider string, env domain.Environment) (*domain.CallbackUrls, error)
	EnsureExists(tx *gorm.DB, scope domain.Scope, env domain.Environment) (*domain.CallbackUrls, error)
}

type Locker interface {
	Lock(key string)
	LockFor(key string, ttl time.Duration)
	Unlock(key string)
	IsLocked(key string) bool
}

type Services struct {
	Daraja         Daraja
	Callbacks      Callbacks
	Reconciliation Reconciliation
	Credentials    Credentials
	CallbackUrls   CallbackUrls
}

func NewServices(db *gorm.DB, l logger.Logger, config *config.Config, results cache.Results) *Services {
	repos := repository.New()

	locker := NewLockerService(cache.InitStorage())
	urlsService := NewCallbackUrlsService(repos.CallbackUrls, config)

	return &Services{
		Daraja:         NewDarajaService(locker, l, config),
		Callbacks:      NewCallbacksService(repos.Callbacks, repos.CallbackUrls, results, l),
		Reconciliation: NewReconciliationService(repos.Callbacks, results, l),
		Credentials:    NewCredentialsService(repos.Credentials, urlsService),
		CallbackUrls:   urlsService,
	}
}
