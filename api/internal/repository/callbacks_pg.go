package repository

import (
	"time"

	"pesagate/api/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CallbacksRepo struct {
}

func InitCallbacksRepo() *CallbacksRepo {
	return &CallbacksRepo{}
}

func (r *CallbacksRepo) UpsertByCheckoutID(tx *gorm.DB, row *domain.CallbackResponses) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "checkout_request_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"result_code", "result_desc", "status", "amount", "mpesa_receipt_number",
			"transaction_date", "phone_number", "balance", "raw_payload",
			"processed", "processed_at", "request_ip", "user_agent", "updated_at",
		}),
	}).Create(row).Error
}

func (r *CallbacksRepo) FindByCheckoutID(tx *gorm.DB, checkoutRequestID string) (*domain.CallbackResponses, error) {
	var row domain.CallbackResponses
	return &row, tx.Where(&domain.CallbackResponses{CheckoutRequestID: checkoutRequestID}).First(&row).Error
}

func (r *CallbacksRepo) FindForBranch(tx *gorm.DB, checkoutRequestID string, branchID uint) (*domain.CallbackResponses, error) {
	var row domain.CallbackResponses
	q := tx.Where("checkout_request_id = ?", checkoutRequestID).
		Where("branch_id = ? OR branch_id IS NULL", branchID)
	return &row, q.First(&row).Error
}

func (r *CallbacksRepo) MarkProcessed(tx *gorm.DB, checkoutRequestID string, at time.Time) error {
	return tx.Model(&domain.CallbackResponses{}).
		Where("checkout_request_id = ?", checkoutRequestID).
		Updates(map[string]any{"processed": true, "processed_at": at}).Error
}
