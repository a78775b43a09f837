package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// CallbackResult is the condensed view of a push: the initiation context
// written when the STK request goes out, merged with the callback outcome
// once the webhook lands. The same shape is served from cache and from the
// durable store so the poller never sees two dialects.
type CallbackResult struct {
	CheckoutRequestID  string `json:"checkout_request_id"`
	MerchantRequestID  string `json:"merchant_request_id,omitempty"`
	ResultCode         string `json:"result_code,omitempty"`
	ResultDesc         string `json:"result_desc,omitempty"`
	Status             string `json:"status"`
	Amount             string `json:"amount,omitempty"`
	MpesaReceiptNumber string `json:"mpesa_receipt_number,omitempty"`
	TransactionDate    string `json:"transaction_date,omitempty"`
	PhoneNumber        string `json:"phone_number,omitempty"`
	Balance            string `json:"balance,omitempty"`

	// original initiation context, kept for display while polling
	TestPhone   string `json:"test_phone,omitempty"`
	TestAmount  string `json:"test_amount,omitempty"`
	BranchID    *uint  `json:"branch_id,omitempty"`
	InitiatedAt string `json:"initiated_at,omitempty"`
	ReceivedAt  string `json:"received_at,omitempty"`
}

func NewInitiationResult(checkoutRequestID, merchantRequestID, phone string, amount decimal.Decimal, branchID uint) *CallbackResult {
	id := branchID
	return &CallbackResult{
		CheckoutRequestID: checkoutRequestID,
		MerchantRequestID: merchantRequestID,
		Status:            STATUS_PENDING.ToString(),
		TestPhone:         phone,
		TestAmount:        amount.String(),
		BranchID:          &id,
		InitiatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
}

// NewCallbackResult projects a durable row onto the polling shape.
func NewCallbackResult(row *CallbackResponses) *CallbackResult {
	res := &CallbackResult{
		CheckoutRequestID:  row.CheckoutRequestID,
		MerchantRequestID:  row.MerchantRequestID,
		ResultCode:         row.ResultCode,
		ResultDesc:         row.ResultDesc,
		Status:             row.Status.ToString(),
		PhoneNumber:        row.PhoneNumber,
		MpesaReceiptNumber: row.MpesaReceiptNumber,
		TransactionDate:    row.TransactionDate,
		BranchID:           row.BranchID,
	}

	if !row.Amount.IsZero() {
		res.Amount = row.Amount.String()
	}
	if !row.Balance.IsZero() {
		res.Balance = row.Balance.String()
	}

	if row.ProcessedAt != nil {
		res.ReceivedAt = row.ProcessedAt.UTC().Format(time.RFC3339)
	}

	return res
}

// MergeInitiation carries the original push context into a callback result,
// both writers are keyed by the same checkout request id.
func (r *CallbackResult) MergeInitiation(prev *CallbackResult) {
	if prev == nil {
		return
	}
	r.TestPhone = prev.TestPhone
	r.TestAmount = prev.TestAmount
	r.InitiatedAt = prev.InitiatedAt
	if r.BranchID == nil {
		r.BranchID = prev.BranchID
	}
}

// StkPushResult is what initiation hands back to the operator UI.
type StkPushResult struct {
	Success           bool   `json:"success"`
	CheckoutRequestID string `json:"checkout_request_id,omitempty"`
	MerchantRequestID string `json:"merchant_request_id,omitempty"`
	CustomerMessage   string `json:"customer_message,omitempty"`
	Message           string `json:"message,omitempty"`
	ErrorType         string `json:"error_type,omitempty"`
	HTTPStatus        int    `json:"http_status,omitempty"`
}

func PushFailure(kind ErrorKind, httpStatus int) *StkPushResult {
	return &StkPushResult{
		Success:    false,
		Message:    kind.OperatorMessage(),
		ErrorType:  kind.ToString(),
		HTTPStatus: httpStatus,
	}
}

type StkQueryResult struct {
	ResponseCode      string `json:"ResponseCode"`
	ResultCode        string `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// RequestMeta is the audit trail of a webhook delivery.
type RequestMeta struct {
	IP        string
	UserAgent string
	URL       string
}

const (
	ErrMsgInternalServerError       = "internal server error"
	ErrMsgParamsInternalServerError = "internal server error: %s"
	ErrMsgBadRequest                = "bad request"
	ErrMsgParamsBadRequest          = "bad request: %s"
	ErrMsgNoBranchSelected          = "no branch selected"
	ErrMsgCredentialsNotFound       = "credentials not found"
	ErrMsgCallbackUrlNotFound       = "callback url not found"
	ErrMsgInvalidEnvironment        = "invalid environment"
	ErrMsgOngoingTransaction        = "a transaction is already in progress for this phone number"

	MsgCallbackReceived = "Callback received and processed"
	MsgStkSent          = "stk_sent"
)

const (
	ErrParamEmptyCheckoutId = "checkout_request_id is empty"
)

var (
	ErrNoBranchSelected    = fmt.Errorf(ErrMsgNoBranchSelected)
	ErrInternalServerError = fmt.Errorf(ErrMsgInternalServerError)
	ErrCredentialsNotFound = fmt.Errorf(ErrMsgCredentialsNotFound)
	ErrCallbackUrlNotFound = fmt.Errorf(ErrMsgCallbackUrlNotFound)
	ErrInvalidEnvironment  = fmt.Errorf(ErrMsgInvalidEnvironment)
	ErrOngoingTransaction  = fmt.Errorf(ErrMsgOngoingTransaction)
	ErrInvalidCheckoutId   = fmt.Errorf("invalid checkout request id")
)

func GetStatusByErr(err error) (status int) {
	if err == nil {
		return 200
	}

	switch {
	case errors.Is(err, ErrNoBranchSelected):
		status = http.StatusBadRequest
	case errors.Is(err, ErrInvalidEnvironment):
		status = http.StatusBadRequest
	case errors.Is(err, ErrInvalidCheckoutId):
		status = http.StatusBadRequest
	case errors.Is(err, ErrCredentialsNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, ErrCallbackUrlNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, ErrOngoingTransaction):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	return status
}
