package logger

import (
	"github.com/shopspring/decimal"
)

func (l Logger) TemplCallbackErr(message string, errorId string, checkoutRequestId string, resultCode string, ip string) string {
	l.Error(message, LS_CALLBACKS, true, "checkout_request_id", checkoutRequestId, "result_code", resultCode, "error_id", errorId, "ip", ip)
	return errorId
}

func (l Logger) TemplCallbackInfo(message string, errorId string, checkoutRequestId string, resultCode string, ip string) string {
	l.Info(message, LS_CALLBACKS, true, "checkout_request_id", checkoutRequestId, "result_code", resultCode, "error_id", errorId, "ip", ip)
	return errorId
}

func (l Logger) TemplCallbackWarn(message string, errorId string, ip string, payload []byte) string {
	l.Warn(message, LS_CALLBACKS, true, "error_id", errorId, "ip", ip, "payload", string(payload))
	return errorId
}

func (l Logger) TemplPushErr(message string, errorId string, phone string, amount decimal.Decimal, environment string, branchId string) string {
	l.Error(message, LS_PUSHES, true, "phone", phone, "amount", amount.String(), "environment", environment, "branch_id", branchId, "error_id", errorId)
	return errorId
}

func (l Logger) TemplPushInfo(message string, errorId string, phone string, amount decimal.Decimal, environment string, branchId string) string {
	l.Info(message, LS_PUSHES, true, "phone", phone, "amount", amount.String(), "environment", environment, "branch_id", branchId, "error_id", errorId)
	return errorId
}

func (l Logger) TemplSettingsErr(message string, errorId string, branchId string, environment string, ip string) string {
	l.Error(message, LS_SETTINGS, true, "branch_id", branchId, "environment", environment, "error_id", errorId, "ip", ip)
	return errorId
}

// use only for fatal errors
func (l Logger) TemplHTTPError(message string, ipv4 string, err error) {
	l.Fatal(message, LS_FATAL, true, "error", err.Error(), "ipv4", ipv4)
}
