package service

import (
	"pesagate/api/internal/domain"
	"pesagate/api/internal/infra/cache"
	"pesagate/api/internal/infra/postgres"
	"pesagate/api/internal/logger"
	"pesagate/api/internal/repository"

	"gorm.io/gorm"
)

type ReconciliationService struct {
	repo    repository.Callbacks
	results cache.Results
	l       logger.Logger
}

func NewReconciliationService(repo repository.Callbacks, results cache.Results, l logger.Logger) *ReconciliationService {
	return &ReconciliationService{repo: repo, results: results, l: l}
}

func (s *ReconciliationService) SaveInitiation(res *domain.CallbackResult) error {
	return s.results.Save(res.CheckoutRequestID, res)
}

// Query checks the cache first, then the durable store. nil, nil means the
// webhook has not arrived: the caller keeps polling, it is not an error.
func (s *ReconciliationService) Query(tx *gorm.DB, branchID uint, checkoutRequestID string) (*domain.CallbackResult, error) {
	if checkoutRequestID == "" {
		return nil, domain.ErrInvalidCheckoutId
	}

	cached, err := s.results.Find(checkoutRequestID)
	if err != nil {
		s.l.Debug("result cache read error: " + err.Error())
	}
	if cached != nil {
		return cached, nil
	}

	row, err := s.repo.FindForBranch(tx, checkoutRequestID, branchID)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, nil
		}

		var errid = logger.GenErrorId()
		s.l.TemplCallbackErr("find callback error: "+err.Error(), errid, checkoutRequestID, logger.NA, logger.NA)
		return nil, domain.ErrInternalServerError
	}

	return domain.NewCallbackResult(row), nil
}

func (s *ReconciliationService) ClearCache(checkoutRequestID string) error {
	if checkoutRequestID == "" {
		return domain.ErrInvalidCheckoutId
	}
	return s.results.Delete(checkoutRequestID)
}
