package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successPayload = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 10.00},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "TransactionDate", "Value": 20191219102115},
					{"Name": "PhoneNumber", "Value": 254712345678},
					{"Name": "Balance"}
				]
			}
		}
	}
}`

const failedPayload = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-2",
			"CheckoutRequestID": "ws_CO_191220191020363926",
			"ResultCode": 1032,
			"ResultDesc": "Request cancelled by user"
		}
	}
}`

func TestParseCallback(t *testing.T) {
	stk, err := ParseCallback([]byte(successPayload))
	require.NoError(t, err)

	assert.Equal(t, "ws_CO_191220191020363925", stk.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", stk.MerchantRequestID)
	assert.Equal(t, "0", stk.ResultCode.String())
	require.NotNil(t, stk.CallbackMetadata)

	info := stk.CallbackMetadata.TxInfo()
	assert.Equal(t, "10", info.Amount.String())
	assert.Equal(t, "NLJ7RT61SV", info.MpesaReceiptNumber)
	assert.Equal(t, "20191219102115", info.TransactionDate)
	assert.Equal(t, "254712345678", info.PhoneNumber)
	assert.True(t, info.Balance.IsZero())
}

func TestParseCallbackNoMetadata(t *testing.T) {
	stk, err := ParseCallback([]byte(failedPayload))
	require.NoError(t, err)

	assert.Equal(t, "1032", stk.ResultCode.String())
	assert.Nil(t, stk.CallbackMetadata)

	// nil metadata is safe
	info := stk.CallbackMetadata.TxInfo()
	assert.True(t, info.Amount.IsZero())
}

func TestParseCallbackFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"empty body", "", ErrEmptyCallback},
		{"not json", "<xml/>", ErrMalformedCallback},
		{"missing stkCallback", `{"Body": {}}`, ErrMissingCallback},
		{"wrong envelope", `{"Result": {"ResultCode": 0}}`, ErrMissingCallback},
		{"empty checkout id", `{"Body": {"stkCallback": {"ResultCode": 0}}}`, ErrMalformedCallback},
	}

	for _, x := range tests {
		t.Run(x.name, func(t *testing.T) {
			_, err := ParseCallback([]byte(x.payload))
			if !errors.Is(err, x.wantErr) {
				t.Fatalf("got %v, want %v", err, x.wantErr)
			}
		})
	}
}

func TestExtractBalance(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"{Amount={CurrencyCode=KES, MinimumAmount=500, BasicAmount=123.45}}", "123.45"},
		{"BasicAmount=77", "77"},
		{"1500.50", "1500.5"},
		{500.25, "500.25"},
		{"", "0"},
		{nil, "0"},
		{"not a number", "0"},
	}

	for _, x := range tests {
		got := ExtractBalance(x.in)
		if got.String() != x.want {
			t.Fatalf("balance %v: got %s, want %s", x.in, got.String(), x.want)
		}
	}
}
