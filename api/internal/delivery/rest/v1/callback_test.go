package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pesagate/api/internal/config"
	"pesagate/api/internal/domain"
	"pesagate/api/internal/logger"
	"pesagate/api/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type stubCallbacks struct {
	calls    int
	lastBody []byte
	err      error
}

func (s *stubCallbacks) Ingest(_ *gorm.DB, payload []byte, _ domain.RequestMeta) (*domain.CallbackResponses, error) {
	s.calls++
	s.lastBody = payload
	if s.err != nil {
		return nil, s.err
	}
	return &domain.CallbackResponses{}, nil
}

type stubReconciliation struct {
	result *domain.CallbackResult
	err    error

	clearedID string
}

func (s *stubReconciliation) SaveInitiation(_ *domain.CallbackResult) error { return nil }

func (s *stubReconciliation) Query(_ *gorm.DB, _ uint, checkoutRequestID string) (*domain.CallbackResult, error) {
	if checkoutRequestID == "" {
		return nil, domain.ErrInvalidCheckoutId
	}
	return s.result, s.err
}

func (s *stubReconciliation) ClearCache(checkoutRequestID string) error {
	s.clearedID = checkoutRequestID
	return nil
}

func newTestRouter(services *service.Services) *gin.Engine {
	gin.SetMode(gin.TestMode)

	c := &config.Config{PublicBaseUrl: "https://pay.example.com", PrivateKey: "test-access-key"}

	r := gin.New()
	h := NewHandler(services, nil, c, logger.Logger{})
	h.InitRoutes(r.Group("/v1"))
	return r
}

func TestProviderCallbackAlwaysAcks(t *testing.T) {
	callbacks := &stubCallbacks{err: domain.ErrMalformedCallback}
	r := newTestRouter(&service.Services{Callbacks: callbacks})

	req := httptest.NewRequest(http.MethodPost, "/v1/mpesa/callback", strings.NewReader("not json at all"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// ingestion failed, the provider still gets its 200
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var body responseCallbackAck
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Message != domain.MsgCallbackReceived {
		t.Fatalf("got body %+v", body)
	}

	if callbacks.calls != 1 || string(callbacks.lastBody) != "not json at all" {
		t.Fatalf("ingest got %d calls, body %q", callbacks.calls, callbacks.lastBody)
	}
}

func TestCallbackLiveness(t *testing.T) {
	r := newTestRouter(&service.Services{})

	req := httptest.NewRequest(http.MethodGet, "/v1/mpesa/callback", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
}

func settingsRequest(body string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/settings/payment-types/query-status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestSettingsRequireAccessKey(t *testing.T) {
	r := newTestRouter(&service.Services{Reconciliation: &stubReconciliation{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, settingsRequest(`{"checkout_request_id":"ws_CO_1"}`, nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d", w.Code)
	}
}

func TestSettingsRequireBranch(t *testing.T) {
	r := newTestRouter(&service.Services{Reconciliation: &stubReconciliation{}})

	headers := map[string]string{"Access": "test-access-key"}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, settingsRequest(`{"checkout_request_id":"ws_CO_1"}`, headers))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", w.Code)
	}

	var body responseError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != domain.ErrMsgNoBranchSelected {
		t.Fatalf("got message %q", body.Message)
	}

	// 0 is not a branch
	headers["X-Branch-ID"] = "0"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, settingsRequest(`{"checkout_request_id":"ws_CO_1"}`, headers))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d for branch 0", w.Code)
	}
}

func TestQueryStatusEmptyCheckoutId(t *testing.T) {
	r := newTestRouter(&service.Services{Reconciliation: &stubReconciliation{}})

	headers := map[string]string{"Access": "test-access-key", "X-Branch-ID": "7"}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, settingsRequest(`{}`, headers))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", w.Code)
	}

	var body responseError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != domain.ErrParamEmptyCheckoutId {
		t.Fatalf("got message %q", body.Message)
	}
}

func TestQueryStatusPending(t *testing.T) {
	// no result yet: success with a null callback_response, keep polling
	r := newTestRouter(&service.Services{Reconciliation: &stubReconciliation{}})

	headers := map[string]string{"Access": "test-access-key", "X-Branch-ID": "7"}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, settingsRequest(`{"checkout_request_id":"ws_CO_1"}`, headers))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var body responseQueryStatus
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.CallbackResponse != nil {
		t.Fatalf("got body %+v", body)
	}
}

func TestQueryStatusResolved(t *testing.T) {
	recon := &stubReconciliation{result: &domain.CallbackResult{
		CheckoutRequestID: "ws_CO_1",
		Status:            domain.STATUS_SUCCESS.ToString(),
		Amount:            "1",
	}}
	r := newTestRouter(&service.Services{Reconciliation: recon})

	headers := map[string]string{"Access": "test-access-key", "X-Branch-ID": "7"}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, settingsRequest(`{"checkout_request_id":"ws_CO_1"}`, headers))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var body responseQueryStatus
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.CallbackResponse == nil || body.CallbackResponse.Status != domain.STATUS_SUCCESS.ToString() {
		t.Fatalf("got body %+v", body)
	}
}
