// OPERATOR SETTINGS ROUTES

package v1

import (
	"net/http"

	"pesagate/api/internal/domain"
	"pesagate/api/internal/logger"
	"pesagate/api/internal/repository"
	"pesagate/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (h *Handler) initSettingsRoutes(g *gin.RouterGroup) {
	settings := g.Group("/settings/payment-types", h.adminAccessMiddleware(), h.branchMiddleware())

	settings.POST("/test-credentials", h.testCredentials)
	settings.POST("/query-status", h.queryStatus)
	settings.POST("/clear-callback-cache", h.clearCallbackCache)
	settings.GET("/callback-urls", h.callbackUrls)
	settings.PUT("/callback-url", h.updateCallbackUrl)
	settings.POST("/verify-callback-url", h.verifyCallbackUrl)
	settings.POST("/save-credentials", h.saveCredentials)
}

// POST /settings/payment-types/test-credentials
//
// Fires a real STK push with the submitted credentials so the operator can
// see the prompt land on the test phone. The outcome arrives later via the
// webhook and is picked up by polling query-status.
func (h *Handler) testCredentials(c *gin.Context) {
	branchID := branchFromCtx(c)

	data, ok := filterTestCredentials(c)
	if !ok || data == nil {
		return
	}

	creds := &domain.Credentials{
		BranchID:       branchID,
		Environment:    domain.StrToEnvironment(data.Environment),
		IsTesting:      true,
		ConsumerKey:    data.ConsumerKey,
		ConsumerSecret: data.ConsumerSecret,
		Shortcode:      data.BusinessShortcode,
		Passkey:        data.Passkey,
	}

	phone := data.TestPhone
	if phone == "" {
		phone = h.config.Daraja.TestPhone
	}
	amount := data.TestAmount
	if amount.IsZero() {
		amount = decimal.NewFromInt(h.config.Daraja.TestAmount)
	}

	if h.services.Daraja.OngoingTransaction(phone) {
		responseErr(c, http.StatusConflict, domain.ErrMsgOngoingTransaction, "")
		return
	}

	result := h.services.Daraja.InitiateStkPush(c.Request.Context(), creds, phone, amount, "Credential test")
	if !result.Success {
		// classified failure, the body carries the remediation hint
		c.AbortWithStatusJSON(http.StatusOK, result)
		return
	}

	err := h.services.Reconciliation.SaveInitiation(
		domain.NewInitiationResult(result.CheckoutRequestID, result.MerchantRequestID, phone, amount, branchID))
	if err != nil {
		h.log.Debug("save initiation context error: " + err.Error())
	}

	c.AbortWithStatusJSON(http.StatusOK, responseStkSent{
		Success:           true,
		Status:            domain.MsgStkSent,
		CheckoutRequestID: result.CheckoutRequestID,
		MerchantRequestID: result.MerchantRequestID,
		CustomerMessage:   result.CustomerMessage,
	})
}

// POST /settings/payment-types/query-status
func (h *Handler) queryStatus(c *gin.Context) {
	var data struct {
		CheckoutRequestId string `json:"checkout_request_id"`
	}

	var errid = logger.GenErrorId()

	if err := c.ShouldBindJSON(&data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	if data.CheckoutRequestId == "" {
		responseErr(c, http.StatusBadRequest, domain.ErrParamEmptyCheckoutId, "")
		return
	}

	result, err := h.services.Reconciliation.Query(h.db, branchFromCtx(c), data.CheckoutRequestId)
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	// result stays nil until the webhook arrives: keep polling
	c.AbortWithStatusJSON(http.StatusOK, responseQueryStatus{Success: true, CallbackResponse: result})
}

// POST /settings/payment-types/clear-callback-cache
func (h *Handler) clearCallbackCache(c *gin.Context) {
	var data struct {
		CheckoutRequestId string `json:"checkout_request_id"`
	}

	var errid = logger.GenErrorId()

	if err := c.ShouldBindJSON(&data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	if err := h.services.Reconciliation.ClearCache(data.CheckoutRequestId); err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseOk{Success: true})
}

// GET /settings/payment-types/callback-urls
func (h *Handler) callbackUrls(c *gin.Context) {
	var errid = logger.GenErrorId()

	filter := repository.CallbackUrlFilter{
		PaymentType: c.Query("payment_type"),
		Provider:    c.Query("provider"),
	}

	if envStr := c.Query("environment"); envStr != "" {
		if !domain.IsValidEnvironment(envStr) {
			responseErr(c, http.StatusBadRequest, domain.ErrMsgInvalidEnvironment, "")
			return
		}
		env := domain.StrToEnvironment(envStr)
		filter.Environment = &env
	}

	urls, err := h.services.CallbackUrls.List(h.db, domain.BranchScope(branchFromCtx(c)), filter)
	if err != nil {
		h.log.TemplSettingsErr("list callback urls error: "+err.Error(), errid, logger.AnyToStr(branchFromCtx(c)), c.Query("environment"), c.ClientIP())
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseCallbackUrls{Success: true, CallbackUrls: urls})
}

type callbackUrlData struct {
	PaymentType string `json:"payment_type" validate:"omitempty,min=2,max=32"`
	Provider    string `json:"provider" validate:"omitempty,min=2,max=32"`
	Environment string `json:"environment" validate:"required,oneof=sandbox live"`
	Url         string `json:"url" validate:"omitempty,webhook,max=255"`
}

func (d *callbackUrlData) applyDefaults() {
	if d.PaymentType == "" {
		d.PaymentType = domain.PAYMENT_TYPE_MPESA
	}
	if d.Provider == "" {
		d.Provider = domain.PROVIDER_DARAJA
	}
}

func (h *Handler) bindCallbackUrlData(c *gin.Context, requireUrl bool) (*callbackUrlData, bool) {
	var data callbackUrlData

	if err := c.ShouldBindJSON(&data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return nil, false
	}

	v := validator.New()
	v.RegisterValidation("webhook", validateWebhook)

	if err := v.Struct(data); err != nil {
		if validationErrs, castErr := utils.SafeCast[validator.ValidationErrors](err); castErr == nil && len(validationErrs) > 0 {
			responseErr(c, http.StatusBadRequest, formatValidationErr(data, validationErrs[0]), "")
		} else {
			responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		}
		return nil, false
	}

	if requireUrl && data.Url == "" {
		responseErr(c, http.StatusBadRequest, "field 'url' is required", "")
		return nil, false
	}

	data.applyDefaults()
	return &data, true
}

// PUT /settings/payment-types/callback-url
func (h *Handler) updateCallbackUrl(c *gin.Context) {
	var errid = logger.GenErrorId()

	data, ok := h.bindCallbackUrlData(c, true)
	if !ok {
		return
	}

	var updated *domain.CallbackUrls
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		updated, txErr = h.services.CallbackUrls.UpdateUrl(tx, domain.BranchScope(branchFromCtx(c)),
			data.PaymentType, data.Provider, domain.StrToEnvironment(data.Environment), data.Url)
		return txErr
	})
	if err != nil {
		h.log.TemplSettingsErr("update callback url error: "+err.Error(), errid, logger.AnyToStr(branchFromCtx(c)), data.Environment, c.ClientIP())
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseCallbackUrl{Success: true, CallbackUrl: updated})
}

// POST /settings/payment-types/verify-callback-url
func (h *Handler) verifyCallbackUrl(c *gin.Context) {
	var errid = logger.GenErrorId()

	data, ok := h.bindCallbackUrlData(c, false)
	if !ok {
		return
	}

	var verified *domain.CallbackUrls
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		verified, txErr = h.services.CallbackUrls.Verify(tx, domain.BranchScope(branchFromCtx(c)),
			data.PaymentType, data.Provider, domain.StrToEnvironment(data.Environment))
		return txErr
	})
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseCallbackUrl{Success: true, CallbackUrl: verified})
}

// POST /settings/payment-types/save-credentials
func (h *Handler) saveCredentials(c *gin.Context) {
	branchID := branchFromCtx(c)

	var errid = logger.GenErrorId()

	data, ok := filterTestCredentials(c)
	if !ok || data == nil {
		return
	}

	creds := &domain.Credentials{
		BranchID:       branchID,
		Environment:    domain.StrToEnvironment(data.Environment),
		IsActive:       true,
		ConsumerKey:    data.ConsumerKey,
		ConsumerSecret: data.ConsumerSecret,
		Shortcode:      data.BusinessShortcode,
		Passkey:        data.Passkey,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return h.services.Credentials.Save(tx, creds)
	})
	if err != nil {
		h.log.TemplSettingsErr("save credentials error: "+err.Error(), errid, logger.AnyToStr(branchID), data.Environment, c.ClientIP())
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseOk{Success: true})
}
