package service

import (
	"testing"
	"time"

	"pesagate/api/internal/domain"
	"pesagate/api/internal/infra/cache"
	"pesagate/api/internal/logger"

	"github.com/shopspring/decimal"
)

const successCallback = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 1.00},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "TransactionDate", "Value": 20191219102115},
					{"Name": "PhoneNumber", "Value": 254712345678}
				]
			}
		}
	}
}`

func newTestCallbacksService() (*CallbacksService, *fakeCallbacksRepo, *fakeCallbackUrlsRepo, cache.Results) {
	repo := newFakeCallbacksRepo()
	urls := newFakeCallbackUrlsRepo()
	results := cache.InitMemoryResults()
	return NewCallbacksService(repo, urls, results, logger.Logger{}), repo, urls, results
}

func TestIngestSuccess(t *testing.T) {
	s, repo, _, results := newTestCallbacksService()

	meta := domain.RequestMeta{IP: "196.201.214.200", UserAgent: "SAF", URL: "https://pay.example.com/v1/mpesa/callback"}

	row, err := s.Ingest(nil, []byte(successCallback), meta)
	if err != nil {
		t.Fatal(err)
	}

	if row.Status != domain.STATUS_SUCCESS {
		t.Fatalf("got status %s", row.Status.ToString())
	}
	if row.MpesaReceiptNumber != "NLJ7RT61SV" {
		t.Fatalf("got receipt %q", row.MpesaReceiptNumber)
	}
	if row.TransactionDate != "20191219102115" {
		t.Fatalf("got transaction date %q", row.TransactionDate)
	}
	if !row.Processed || row.ProcessedAt == nil {
		t.Fatal("ingested row must be marked processed")
	}
	if row.RequestIP != meta.IP {
		t.Fatalf("got request ip %q", row.RequestIP)
	}

	stored, err := repo.FindByCheckoutID(nil, "ws_CO_191220191020363925")
	if err != nil {
		t.Fatal(err)
	}
	if stored.RawPayload != successCallback {
		t.Fatal("raw payload must be kept verbatim")
	}

	// the poller must see the result from cache immediately
	cached, err := results.Find("ws_CO_191220191020363925")
	if err != nil {
		t.Fatal(err)
	}
	if cached == nil || cached.Status != domain.STATUS_SUCCESS.ToString() {
		t.Fatalf("got cached %+v", cached)
	}
	if cached.Amount != "1" {
		t.Fatalf("got cached amount %q", cached.Amount)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	s, repo, _, _ := newTestCallbacksService()

	meta := domain.RequestMeta{IP: "196.201.214.200"}

	for i := 0; i < 3; i++ {
		if _, err := s.Ingest(nil, []byte(successCallback), meta); err != nil {
			t.Fatal(err)
		}
	}

	if len(repo.rows) != 1 {
		t.Fatalf("got %d rows after redeliveries, want 1", len(repo.rows))
	}
}

func TestIngestMalformed(t *testing.T) {
	s, repo, _, _ := newTestCallbacksService()

	payloads := [][]byte{
		nil,
		[]byte(""),
		[]byte("not json"),
		[]byte(`{"Body":{}}`),
		[]byte(`{"unexpected":"shape"}`),
	}

	for _, payload := range payloads {
		if _, err := s.Ingest(nil, payload, domain.RequestMeta{IP: "1.2.3.4"}); err == nil {
			t.Fatalf("payload %q: expected error", payload)
		}
	}

	if len(repo.rows) != 0 {
		t.Fatal("malformed deliveries must not create records")
	}
}

func TestIngestAttributesBranchFromInitiation(t *testing.T) {
	s, repo, _, results := newTestCallbacksService()

	// initiation context written when the push went out
	init := domain.NewInitiationResult("ws_CO_191220191020363925", "29115-34620561-1", "254712345678", decimal.NewFromInt(1), 7)
	if err := results.Save(init.CheckoutRequestID, init); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Ingest(nil, []byte(successCallback), domain.RequestMeta{IP: "196.201.214.200"}); err != nil {
		t.Fatal(err)
	}

	stored, err := repo.FindByCheckoutID(nil, "ws_CO_191220191020363925")
	if err != nil {
		t.Fatal(err)
	}
	if stored.BranchID == nil || *stored.BranchID != 7 {
		t.Fatalf("got branch id %v", stored.BranchID)
	}

	cached, err := results.Find("ws_CO_191220191020363925")
	if err != nil {
		t.Fatal(err)
	}
	if cached.TestPhone != "254712345678" || cached.InitiatedAt == "" {
		t.Fatalf("initiation context lost: %+v", cached)
	}
}

func TestIngestTouchesCallbackUrl(t *testing.T) {
	s, _, urls, _ := newTestCallbacksService()

	registered := &domain.CallbackUrls{
		PaymentType: domain.PAYMENT_TYPE_MPESA,
		Provider:    domain.PROVIDER_DARAJA,
		Environment: domain.ENV_SANDBOX,
		Url:         "https://pay.example.com/v1/mpesa/callback",
		IsActive:    true,
	}
	registered.SetScope(domain.BranchScope(7))
	if err := urls.Create(nil, registered); err != nil {
		t.Fatal(err)
	}

	before := time.Now()
	meta := domain.RequestMeta{IP: "196.201.214.200", URL: registered.Url}

	if _, err := s.Ingest(nil, []byte(successCallback), meta); err != nil {
		t.Fatal(err)
	}

	if registered.LastReceivedAt == nil || registered.LastReceivedAt.Before(before) {
		t.Fatalf("got last_received_at %v", registered.LastReceivedAt)
	}
}
