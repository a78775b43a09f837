package service

import (
	"pesagate/api/internal/domain"
	"pesagate/api/internal/infra/postgres"
	"pesagate/api/internal/repository"

	"gorm.io/gorm"
)

type CredentialsService struct {
	repo repository.Credentials
	urls CallbackUrls
}

func NewCredentialsService(repo repository.Credentials, urls CallbackUrls) *CredentialsService {
	return &CredentialsService{repo: repo, urls: urls}
}

// Save upserts the credential and makes sure the branch has a callback url
// for the environment, created lazily on first save.
func (s *CredentialsService) Save(tx *gorm.DB, creds *domain.Credentials) error {
	if err := s.repo.Upsert(tx, creds); err != nil {
		return err
	}

	_, err := s.urls.EnsureExists(tx, creds.Scope(), creds.Environment)
	return err
}

func (s *CredentialsService) FindByBranch(tx *gorm.DB, branchID uint, env domain.Environment) (*domain.Credentials, error) {
	creds, err := s.repo.FindByBranch(tx, branchID, env)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrCredentialsNotFound
		}
		return nil, err
	}
	return creds, nil
}
