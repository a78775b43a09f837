package v1

import (
	"pesagate/api/internal/domain"

	"github.com/gin-gonic/gin"
)

type responseError struct {
	Success bool   `json:"success"`
	ErrorID string `json:"error_id,omitempty"`
	Message string `json:"message"`
}

// always-200 provider acknowledgement
type responseCallbackAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type responseStkSent struct {
	Success           bool   `json:"success"`
	Status            string `json:"status"`
	CheckoutRequestID string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id"`
	CustomerMessage   string `json:"customer_message,omitempty"`
}

// CallbackResponse stays null until the webhook arrives: "keep polling"
type responseQueryStatus struct {
	Success          bool                   `json:"success"`
	CallbackResponse *domain.CallbackResult `json:"callback_response"`
}

type responseOk struct {
	Success bool `json:"success"`
}

type responseCallbackUrls struct {
	Success      bool                  `json:"success"`
	CallbackUrls []domain.CallbackUrls `json:"callback_urls"`
}

type responseCallbackUrl struct {
	Success     bool                 `json:"success"`
	CallbackUrl *domain.CallbackUrls `json:"callback_url"`
}

func responseErr(c *gin.Context, statusCode int, msg, errorID string) {
	c.AbortWithStatusJSON(statusCode, responseError{false, errorID, msg})
}
