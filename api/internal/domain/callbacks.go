package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CallbackResponses is the durable record of one webhook delivery. The
// provider retries deliveries, so rows are upserted by checkout_request_id
// rather than inserted blindly.
type CallbackResponses struct {
	Model
	ID                uint   `gorm:"primaryKey"`
	MerchantRequestID string `gorm:"size:64"`
	CheckoutRequestID string `gorm:"size:64;unique;not null"`
	// set when the initiation context is still known at ingestion time
	BranchID           *uint
	ResultCode         string          `gorm:"size:16"`
	ResultDesc         string          `gorm:"type:text"`
	Amount             decimal.Decimal `gorm:"type:numeric"`
	MpesaReceiptNumber string          `gorm:"size:32"`
	TransactionDate    string          `gorm:"size:20"`
	PhoneNumber        string          `gorm:"size:16"`
	Balance            decimal.Decimal `gorm:"type:numeric"`
	RawPayload         string          `gorm:"type:text"`
	Status             Status          `gorm:"type:int8"`
	Processed          bool
	ProcessedAt        *time.Time
	RequestIP          string `gorm:"size:45"`
	UserAgent          string `gorm:"type:text"`
}

type Status uint8

const (
	STATUS_PENDING Status = iota
	STATUS_SUCCESS
	STATUS_FAILED
	STATUS_CANCELLED
	STATUS_TIMEOUT
)

var Statuses = [...]string{"pending", "success", "failed", "cancelled", "timeout"}

func StrToStatus(s string) Status {
	for i, statusName := range Statuses {
		if s == statusName {
			return Status(i)
		}
	}
	return STATUS_PENDING
}

func (s Status) ToString() string {
	return Statuses[s]
}

func (s Status) IsFinal() bool {
	return s != STATUS_PENDING
}

func (s Status) IsSuccess() bool {
	return s == STATUS_SUCCESS
}

const (
	RESULT_CODE_OK        = "0"
	RESULT_CODE_CANCELLED = "1032" // request cancelled by user
)

// result codes the provider documents as terminal failures
var failedResultCodes = map[string]struct{}{
	"1":    {}, // insufficient balance
	"1001": {}, // ussd session conflict
	"1019": {}, // transaction expired
	"1025": {}, // push message too long
	"1037": {}, // timeout, subscriber unreachable
	"2001": {}, // wrong pin
}

// DetermineStatus maps a provider result code onto the processing status.
// Unknown codes stay pending so the poller keeps waiting instead of showing
// a wrong terminal state.
func DetermineStatus(resultCode string) Status {
	switch {
	case resultCode == RESULT_CODE_OK:
		return STATUS_SUCCESS
	case resultCode == RESULT_CODE_CANCELLED:
		return STATUS_CANCELLED
	default:
		if _, ok := failedResultCodes[resultCode]; ok {
			return STATUS_FAILED
		}
		return STATUS_PENDING
	}
}
