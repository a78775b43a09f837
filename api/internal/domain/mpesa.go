package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// provider webhook envelope: Body.stkCallback is the only part we trust
type CallbackEnvelope struct {
	Body struct {
		StkCallback *StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        json.Number       `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

type MetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

var (
	ErrEmptyCallback     = fmt.Errorf("empty callback payload")
	ErrMalformedCallback = fmt.Errorf("malformed callback payload")
	ErrMissingCallback   = fmt.Errorf("missing Body.stkCallback")
)

// ParseCallback fails closed: anything without the expected nested shape is
// rejected and never turns into a durable record.
func ParseCallback(payload []byte) (*StkCallback, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyCallback
	}

	var envelope CallbackEnvelope

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedCallback, err.Error())
	}

	stk := envelope.Body.StkCallback
	if stk == nil {
		return nil, ErrMissingCallback
	}

	if stk.CheckoutRequestID == "" {
		return nil, fmt.Errorf("%w: empty CheckoutRequestID", ErrMalformedCallback)
	}

	return stk, nil
}

// TxInfo is the transaction metadata flattened out of the Name/Value item
// list. Only success callbacks carry it.
type TxInfo struct {
	Amount             decimal.Decimal
	MpesaReceiptNumber string
	TransactionDate    string
	PhoneNumber        string
	Balance            decimal.Decimal
}

func (m *CallbackMetadata) TxInfo() TxInfo {
	var info TxInfo
	if m == nil {
		return info
	}

	for _, item := range m.Item {
		switch item.Name {
		case "Amount":
			info.Amount = anyToDecimal(item.Value)
		case "MpesaReceiptNumber":
			info.MpesaReceiptNumber = anyToPlainStr(item.Value)
		case "TransactionDate":
			info.TransactionDate = anyToPlainStr(item.Value)
		case "PhoneNumber":
			info.PhoneNumber = anyToPlainStr(item.Value)
		case "Balance":
			info.Balance = ExtractBalance(item.Value)
		}
	}

	return info
}

// ExtractBalance handles the semi-structured balance field. It arrives
// either as a plain number or as a packed string like
// "{Amount={CurrencyCode=KES, MinimumAmount=500, BasicAmount=123.45}}"
// where only BasicAmount matters.
func ExtractBalance(v any) decimal.Decimal {
	s := anyToPlainStr(v)
	if s == "" {
		return decimal.Zero
	}

	if idx := strings.Index(s, "BasicAmount="); idx != -1 {
		s = s[idx+len("BasicAmount="):]
		end := strings.IndexAny(s, ",}|&")
		if end != -1 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func anyToDecimal(v any) decimal.Decimal {
	d, err := decimal.NewFromString(anyToPlainStr(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// anyToPlainStr renders metadata values without scientific notation,
// the decoder hands numbers over as json.Number
func anyToPlainStr(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
