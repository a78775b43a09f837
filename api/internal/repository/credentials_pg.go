package repository

import (
	"pesagate/api/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CredentialsRepo struct {
}

func InitCredentialsRepo() *CredentialsRepo {
	return &CredentialsRepo{}
}

func (r *CredentialsRepo) Upsert(tx *gorm.DB, creds *domain.Credentials) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "branch_id"}, {Name: "environment"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_active", "is_testing", "consumer_key", "consumer_secret", "shortcode", "passkey", "updated_at",
		}),
	}).Create(creds).Error
}

func (r *CredentialsRepo) FindByBranch(tx *gorm.DB, branchID uint, env domain.Environment) (*domain.Credentials, error) {
	var creds domain.Credentials
	return &creds, tx.Where("branch_id = ? AND environment = ?", branchID, env).First(&creds).Error
}
