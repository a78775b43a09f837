package service

import (
	"time"

	"pesagate/api/internal/domain"
	"pesagate/api/internal/infra/cache"
	"pesagate/api/internal/logger"
	"pesagate/api/internal/repository"

	"gorm.io/gorm"
)

type CallbacksService struct {
	repo    repository.Callbacks
	urls    repository.CallbackUrls
	results cache.Results
	l       logger.Logger
}

func NewCallbacksService(repo repository.Callbacks, urls repository.CallbackUrls, results cache.Results, l logger.Logger) *CallbacksService {
	return &CallbacksService{repo: repo, urls: urls, results: results, l: l}
}

// Ingest processes one webhook delivery: parse, upsert the durable record,
// bump the callback url, refresh the cache entry. The caller acknowledges
// the provider with 200 no matter what comes back from here.
func (s *CallbacksService) Ingest(tx *gorm.DB, payload []byte, meta domain.RequestMeta) (*domain.CallbackResponses, error) {
	var errid = logger.GenErrorId()

	stk, err := domain.ParseCallback(payload)
	if err != nil {
		s.l.TemplCallbackWarn("unparseable callback: "+err.Error(), errid, meta.IP, payload)
		return nil, err
	}

	resultCode := stk.ResultCode.String()
	status := domain.DetermineStatus(resultCode)
	info := stk.CallbackMetadata.TxInfo()

	now := time.Now()

	row := &domain.CallbackResponses{
		MerchantRequestID:  stk.MerchantRequestID,
		CheckoutRequestID:  stk.CheckoutRequestID,
		ResultCode:         resultCode,
		ResultDesc:         stk.ResultDesc,
		Amount:             info.Amount,
		MpesaReceiptNumber: info.MpesaReceiptNumber,
		TransactionDate:    info.TransactionDate,
		PhoneNumber:        info.PhoneNumber,
		Balance:            info.Balance,
		RawPayload:         string(payload),
		Status:             status,
		Processed:          true,
		ProcessedAt:        &now,
		RequestIP:          meta.IP,
		UserAgent:          meta.UserAgent,
	}

	// the initiation context, when still cached, attributes the row to a branch
	prev, cacheErr := s.results.Find(stk.CheckoutRequestID)
	if cacheErr != nil {
		s.l.Debug("callback cache read error: " + cacheErr.Error())
	}
	if prev != nil {
		row.BranchID = prev.BranchID
	}

	if err := s.repo.UpsertByCheckoutID(tx, row); err != nil {
		s.l.TemplCallbackErr("persist callback error: "+err.Error(), errid, stk.CheckoutRequestID, resultCode, meta.IP)
		return nil, domain.ErrInternalServerError
	}

	// best effort, registry row may have been edited meanwhile
	if err := s.urls.TouchByUrl(tx, meta.URL, now); err != nil {
		s.l.Debug("touch callback url error: " + err.Error())
	}

	res := domain.NewCallbackResult(row)
	res.MergeInitiation(prev)
	if err := s.results.Save(stk.CheckoutRequestID, res); err != nil {
		s.l.Debug("callback cache write error: " + err.Error())
	}

	s.l.TemplCallbackInfo("callback processed: "+status.ToString(), errid, stk.CheckoutRequestID, resultCode, meta.IP)

	return row, nil
}
