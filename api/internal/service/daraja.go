package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"pesagate/api/internal/config"
	"pesagate/api/internal/domain"
	"pesagate/api/internal/infra/cache"
	"pesagate/api/internal/logger"
	"pesagate/pkg/utils"

	"github.com/shopspring/decimal"
)

const (
	tokenPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath  = "/mpesa/stkpush/v1/processrequest"
	stkQueryPath = "/mpesa/stkpushquery/v1/query"

	darajaTimestampLayout = "20060102150405"

	// while locked, the UI is told to wait instead of double-pushing
	ongoingPushTTL = 90 * time.Second
)

type DarajaService struct {
	client *http.Client
	locker Locker
	tokens *cache.Cache
	l      logger.Logger
	config *config.Config
}

func NewDarajaService(locker Locker, l logger.Logger, config *config.Config) *DarajaService {
	return &DarajaService{
		client: &http.Client{Timeout: config.Daraja.Timeout},
		locker: locker,
		tokens: cache.InitStorage(),
		l:      l,
		config: config,
	}
}

func (s *DarajaService) baseURL(env domain.Environment) string {
	if s.config.Daraja.BaseUrlOverride != "" {
		return s.config.Daraja.BaseUrlOverride
	}
	return env.BaseURL()
}

func (s *DarajaService) Token(ctx context.Context, creds *domain.Credentials) (string, error) {
	tokenKey := "token:" + creds.Environment.ToString() + ":" + creds.ConsumerKey
	if v := s.tokens.Load(tokenKey); v != nil {
		if token, err := utils.SafeCast[string](v); err == nil {
			return token, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL(creds.Environment)+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(creds.ConsumerKey, creds.ConsumerSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &domain.UpstreamError{Kind: domain.ClassifyTransport(err), Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &domain.UpstreamError{
			Kind:       domain.ClassifyUpstream(domain.STAGE_TOKEN, resp.StatusCode, string(body)),
			HTTPStatus: resp.StatusCode,
			Body:       string(body),
		}
	}

	var tokenResp struct {
		AccessToken string      `json:"access_token"`
		ExpiresIn   json.Number `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil || tokenResp.AccessToken == "" {
		return "", &domain.UpstreamError{Kind: domain.ERR_KIND_UNEXPECTED, HTTPStatus: resp.StatusCode, Body: string(body)}
	}

	// keep the token until shortly before the provider expires it
	ttl := time.Hour - time.Minute
	if seconds, err := tokenResp.ExpiresIn.Int64(); err == nil && seconds > 120 {
		ttl = time.Duration(seconds-60) * time.Second
	}
	s.tokens.Set(tokenKey, tokenResp.AccessToken, ttl)

	return tokenResp.AccessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

func (s *DarajaService) InitiateStkPush(ctx context.Context, creds *domain.Credentials, phone string, amount decimal.Decimal, description string) *domain.StkPushResult {
	var errid = logger.GenErrorId()

	normalized, err := NormalizePhone(phone)
	if err != nil {
		return domain.PushFailure(domain.ERR_KIND_INVALID_PHONE, 0)
	}

	token, err := s.Token(ctx, creds)
	if err != nil {
		s.l.TemplPushErr("token fetch error: "+err.Error(), errid, normalized, amount, creds.Environment.ToString(), logger.AnyToStr(creds.BranchID))
		return pushFailureFromErr(err)
	}

	timestamp := time.Now().Format(darajaTimestampLayout)

	payload := utils.MustMarshal(stkPushRequest{
		BusinessShortCode: creds.Shortcode,
		Password:          StkPassword(creds.Shortcode, creds.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount.String(),
		PartyA:            normalized,
		PartyB:            creds.Shortcode,
		PhoneNumber:       normalized,
		CallBackURL:       s.config.CallbackUrlFor(),
		AccountReference:  creds.Shortcode,
		TransactionDesc:   description,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL(creds.Environment)+stkPushPath, bytes.NewBuffer(payload))
	if err != nil {
		return domain.PushFailure(domain.ERR_KIND_UNEXPECTED, 0)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.l.TemplPushErr("stk push transport error: "+err.Error(), errid, normalized, amount, creds.Environment.ToString(), logger.AnyToStr(creds.BranchID))
		return domain.PushFailure(domain.ClassifyTransport(err), 0)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		s.l.TemplPushErr("stk push rejected: "+string(body), errid, normalized, amount, creds.Environment.ToString(), logger.AnyToStr(creds.BranchID))
		return domain.PushFailure(domain.ClassifyUpstream(domain.STAGE_STK_PUSH, resp.StatusCode, string(body)), resp.StatusCode)
	}

	pushResp, err := utils.Unmarshal[stkPushResponse](body)
	if err != nil {
		return domain.PushFailure(domain.ERR_KIND_UNEXPECTED, resp.StatusCode)
	}

	if pushResp.ResponseCode != "0" {
		result := domain.PushFailure(domain.ERR_KIND_UNEXPECTED, resp.StatusCode)
		if pushResp.ResponseDescription != "" {
			result.Message = pushResp.ResponseDescription
		}
		return result
	}

	s.locker.LockFor(ongoingKey(normalized), ongoingPushTTL)

	s.l.TemplPushInfo("stk push sent", errid, normalized, amount, creds.Environment.ToString(), logger.AnyToStr(creds.BranchID))

	return &domain.StkPushResult{
		Success:           true,
		CheckoutRequestID: pushResp.CheckoutRequestID,
		MerchantRequestID: pushResp.MerchantRequestID,
		CustomerMessage:   pushResp.CustomerMessage,
	}
}

func (s *DarajaService) QueryStkStatus(ctx context.Context, creds *domain.Credentials, checkoutRequestID string) (*domain.StkQueryResult, error) {
	token, err := s.Token(ctx, creds)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format(darajaTimestampLayout)

	payload := utils.MustMarshal(map[string]string{
		"BusinessShortCode": creds.Shortcode,
		"Password":          StkPassword(creds.Shortcode, creds.Passkey, timestamp),
		"Timestamp":         timestamp,
		"CheckoutRequestID": checkoutRequestID,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL(creds.Environment)+stkQueryPath, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Kind: domain.ClassifyTransport(err), Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Kind:       domain.ClassifyUpstream(domain.STAGE_STK_QUERY, resp.StatusCode, string(body)),
			HTTPStatus: resp.StatusCode,
			Body:       string(body),
		}
	}

	return utils.Unmarshal[domain.StkQueryResult](body)
}

func (s *DarajaService) OngoingTransaction(phone string) bool {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return false
	}
	return s.locker.IsLocked(ongoingKey(normalized))
}

func ongoingKey(phone string) string {
	return "push:" + phone
}

func pushFailureFromErr(err error) *domain.StkPushResult {
	if upstream, castErr := utils.SafeCast[*domain.UpstreamError](err); castErr == nil {
		return domain.PushFailure(upstream.Kind, upstream.HTTPStatus)
	}
	return domain.PushFailure(domain.ERR_KIND_UNEXPECTED, 0)
}

// StkPassword derives the request password the provider expects:
// base64(shortcode + passkey + timestamp)
func StkPassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

var kenyanMsisdn = regexp.MustCompile(`^254[17]\d{8}$`)

// NormalizePhone rewrites operator input to the international format the
// provider requires: 0712345678 -> 254712345678.
func NormalizePhone(phone string) (string, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	digits = strings.NewReplacer(" ", "", "-", "").Replace(digits)

	switch {
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		digits = "254" + digits[1:]
	case len(digits) == 9 && (digits[0] == '7' || digits[0] == '1'):
		digits = "254" + digits
	}

	if !kenyanMsisdn.MatchString(digits) {
		return "", fmt.Errorf("invalid phone number: %s", phone)
	}

	return digits, nil
}
