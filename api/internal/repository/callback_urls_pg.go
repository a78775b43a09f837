package repository

import (
	"time"

	"pesagate/api/internal/domain"

	"gorm.io/gorm"
)

type CallbackUrlsRepo struct {
}

func InitCallbackUrlsRepo() *CallbackUrlsRepo {
	return &CallbackUrlsRepo{}
}

func (r *CallbackUrlsRepo) Create(tx *gorm.DB, url *domain.CallbackUrls) error {
	return tx.Create(url).Error
}

func (r *CallbackUrlsRepo) Update(tx *gorm.DB, url *domain.CallbackUrls) error {
	return tx.Save(url).Error
}

func scopeQuery(tx *gorm.DB, scope domain.Scope) *gorm.DB {
	if scope.IsBranch() {
		return tx.Where("branch_id = ?", scope.ID)
	}
	return tx.Where("business_id = ?", scope.ID)
}

func (r *CallbackUrlsRepo) FindByTuple(tx *gorm.DB, scope domain.Scope, paymentType, provider string, env domain.Environment) (*domain.CallbackUrls, error) {
	var url domain.CallbackUrls
	q := scopeQuery(tx, scope).
		Where("payment_type = ? AND provider = ? AND environment = ?", paymentType, provider, env)
	return &url, q.First(&url).Error
}

func (r *CallbackUrlsRepo) List(tx *gorm.DB, scope domain.Scope, filter CallbackUrlFilter) ([]domain.CallbackUrls, error) {
	var urls []domain.CallbackUrls

	q := scopeQuery(tx, scope)
	if filter.PaymentType != "" {
		q = q.Where("payment_type = ?", filter.PaymentType)
	}
	if filter.Provider != "" {
		q = q.Where("provider = ?", filter.Provider)
	}
	if filter.Environment != nil {
		q = q.Where("environment = ?", *filter.Environment)
	}

	return urls, q.Order("id").Find(&urls).Error
}

func (r *CallbackUrlsRepo) TouchByUrl(tx *gorm.DB, url string, at time.Time) error {
	return tx.Model(&domain.CallbackUrls{}).
		Where("url = ? AND is_active = ?", url, true).
		Update("last_received_at", at).Error
}
