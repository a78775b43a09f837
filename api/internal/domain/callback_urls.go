package domain

import "time"

const (
	PAYMENT_TYPE_MPESA = "mpesa"
	PROVIDER_DARAJA    = "daraja"
)

// CallbackUrls tells the provider where to deliver webhooks. At most one
// active row exists per (scope, payment_type, provider, environment) tuple.
type CallbackUrls struct {
	Model
	ID          uint        `gorm:"primaryKey"`
	BranchID    *uint       `gorm:"uniqueIndex:idx_callback_urls_scope"`
	BusinessID  *uint       `gorm:"uniqueIndex:idx_callback_urls_scope"`
	PaymentType string      `gorm:"size:32;not null;uniqueIndex:idx_callback_urls_scope"`
	Provider    string      `gorm:"size:32;not null;uniqueIndex:idx_callback_urls_scope"`
	Environment Environment `gorm:"type:int8;uniqueIndex:idx_callback_urls_scope"`
	Url         string      `gorm:"type:text;not null"`
	IsVerified  bool
	VerifiedAt  *time.Time
	// bumped on every delivery that lands on this url
	LastReceivedAt *time.Time
	IsActive       bool `gorm:"default:true"`
	// reserved for webhook signature validation, not checked during ingestion
	SecretKey       string `gorm:"type:text"`
	SignatureHeader string `gorm:"size:64"`
}

func (u *CallbackUrls) Scope() Scope {
	return ScopeFromColumns(u.BranchID, u.BusinessID)
}

func (u *CallbackUrls) SetScope(s Scope) {
	u.BranchID = s.BranchID()
	u.BusinessID = s.BusinessID()
}

// editing the url invalidates any earlier manual verification
func (u *CallbackUrls) ResetVerification() {
	u.IsVerified = false
	u.VerifiedAt = nil
}

func (u *CallbackUrls) MarkVerified(at time.Time) {
	u.IsVerified = true
	u.VerifiedAt = &at
}
