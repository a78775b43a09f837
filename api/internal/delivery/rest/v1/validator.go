package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"pesagate/api/internal/domain"
	"pesagate/api/internal/service"
	"pesagate/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// provider caps a single STK amount
var maxPushAmount = decimal.NewFromInt(250000)

type testCredentialsData struct {
	ConsumerKey       string  `json:"consumer_key" validate:"required,min=10"`
	ConsumerSecret    string  `json:"consumer_secret" validate:"required,min=10"`
	BusinessShortcode string  `json:"business_shortcode" validate:"required,numeric,min=5,max=7"`
	Passkey           string  `json:"passkey" validate:"required,min=10"`
	Environment       string  `json:"environment" validate:"required,oneof=sandbox live"`
	TestPhone         string  `json:"test_phone" validate:"omitempty,phone"`
	TestAmountFloat   float64 `json:"test_amount" validate:"omitempty,amount"`

	TestAmount decimal.Decimal `json:"-"` // used after validation
}

// checks the validity of data in query
// returns false if there is an error
func filterTestCredentials(c *gin.Context) (*testCredentialsData, bool) {
	var data testCredentialsData
	err := c.ShouldBindJSON(&data)
	if err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return nil, false
	}

	v := validator.New()

	v.RegisterValidation("phone", validatePhone)
	v.RegisterValidation("amount", validateAmount)
	err = v.Struct(data)
	if err == nil {
		data.TestAmount = decimal.NewFromFloat(data.TestAmountFloat)

		return &data, true
	}

	validationErrs, err := utils.SafeCast[validator.ValidationErrors](err)
	if err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return nil, false
	}
	if validationErrs == nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return nil, false
	}

	validationErr := validationErrs[0]
	responseErr(c, http.StatusBadRequest, formatValidationErr(data, validationErr), "")

	return nil, false
}

func validatePhone(fl validator.FieldLevel) bool {
	_, err := service.NormalizePhone(fl.Field().String())
	return err == nil
}

func validateAmount(fl validator.FieldLevel) bool {
	amount := decimal.NewFromFloat(fl.Field().Float())

	if amount.LessThan(decimal.NewFromInt(1)) || amount.GreaterThan(maxPushAmount) {
		return false
	}

	return true
}

func validateWebhook(fl validator.FieldLevel) bool {
	if len(fl.Field().String()) <= 8 {
		return false
	}
	if !strings.HasPrefix(fl.Field().String(), "https://") && !strings.HasPrefix(fl.Field().String(), "http://") {
		return false
	}
	if !strings.Contains(fl.Field().String(), ".") { // has dot
		return false
	}

	_, err := url.ParseRequestURI(fl.Field().String())
	return err == nil
}

func formatValidationErr(data any, err validator.FieldError) string {
	jsonTag := getJSONTag(data, err.Field())

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", jsonTag)
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of '%s'", jsonTag, err.Param())
	case "numeric":
		return fmt.Sprintf("field '%s' must be numeric", jsonTag)
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s characters long", jsonTag, err.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters long", jsonTag, err.Param())
	//  custom tags
	case "phone":
		return fmt.Sprintf("field '%s' must be a valid phone number like 2547XXXXXXXX", jsonTag)
	case "amount":
		return fmt.Sprintf("field '%s' must be between 1 and %s", jsonTag, maxPushAmount)
	case "webhook":
		return fmt.Sprintf("field '%s' must be a valid url", jsonTag)

	default:
		return fmt.Sprintf("invalid field '%s'", jsonTag)
	}
}

func getJSONTag(structType any, fieldName string) string {
	typ := reflect.TypeOf(structType)
	field, _ := typ.FieldByName(fieldName)
	tag := field.Tag.Get("json")
	if tag == "" {
		return fieldName
	}
	return tag
}
