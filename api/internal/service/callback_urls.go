package service

import (
	"time"

	"pesagate/api/internal/config"
	"pesagate/api/internal/domain"
	"pesagate/api/internal/infra/postgres"
	"pesagate/api/internal/repository"

	"gorm.io/gorm"
)

type CallbackUrlsService struct {
	repo   repository.CallbackUrls
	config *config.Config
}

func NewCallbackUrlsService(repo repository.CallbackUrls, config *config.Config) *CallbackUrlsService {
	return &CallbackUrlsService{repo: repo, config: config}
}

func (s *CallbackUrlsService) List(tx *gorm.DB, scope domain.Scope, filter repository.CallbackUrlFilter) ([]domain.CallbackUrls, error) {
	return s.repo.List(tx, scope, filter)
}

// EnsureExists provisions the default callback url for a scope/environment
// if none is registered yet. New urls start unverified.
func (s *CallbackUrlsService) EnsureExists(tx *gorm.DB, scope domain.Scope, env domain.Environment) (*domain.CallbackUrls, error) {
	existing, err := s.repo.FindByTuple(tx, scope, domain.PAYMENT_TYPE_MPESA, domain.PROVIDER_DARAJA, env)
	if err == nil {
		return existing, nil
	}
	if !postgres.IsNotFound(err) {
		return nil, err
	}

	url := &domain.CallbackUrls{
		PaymentType: domain.PAYMENT_TYPE_MPESA,
		Provider:    domain.PROVIDER_DARAJA,
		Environment: env,
		Url:         s.config.CallbackUrlFor(),
		IsActive:    true,
	}
	url.SetScope(scope)

	if err := s.repo.Create(tx, url); err != nil {
		return nil, err
	}

	return url, nil
}

func (s *CallbackUrlsService) UpdateUrl(tx *gorm.DB, scope domain.Scope, paymentType, provider string, env domain.Environment, newUrl string) (*domain.CallbackUrls, error) {
	existing, err := s.repo.FindByTuple(tx, scope, paymentType, provider, env)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrCallbackUrlNotFound
		}
		return nil, err
	}

	if existing.Url != newUrl {
		existing.Url = newUrl
		// the new endpoint must be independently re-verified
		existing.ResetVerification()
	}

	if err := s.repo.Update(tx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Verify is a manual operator action, nothing cryptographic happens here.
func (s *CallbackUrlsService) Verify(tx *gorm.DB, scope domain.Scope, paymentType, provider string, env domain.Environment) (*domain.CallbackUrls, error) {
	existing, err := s.repo.FindByTuple(tx, scope, paymentType, provider, env)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrCallbackUrlNotFound
		}
		return nil, err
	}

	existing.MarkVerified(time.Now())

	if err := s.repo.Update(tx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}
