package domain

import (
	"errors"
	"net"
	"strings"
)

type ErrorKind uint8

const (
	ERR_KIND_NONE ErrorKind = iota
	ERR_KIND_AUTHENTICATION_FAILED
	ERR_KIND_INVALID_SHORTCODE
	ERR_KIND_INVALID_PHONE
	ERR_KIND_HTTP_401
	ERR_KIND_HTTP_403
	ERR_KIND_HTTP_500
	ERR_KIND_SYSTEM_BUSY
	ERR_KIND_NETWORK_ERROR
	ERR_KIND_SSL_ERROR
	ERR_KIND_TIMEOUT
	ERR_KIND_UNEXPECTED
)

var ErrorKinds = [...]string{
	"none",
	"authentication_failed",
	"invalid_shortcode",
	"invalid_phone",
	"http_401",
	"http_403",
	"http_500",
	"system_busy",
	"network_error",
	"ssl_error",
	"timeout",
	"unexpected_error",
}

func (k ErrorKind) ToString() string {
	return ErrorKinds[k]
}

// operator-facing remediation text per kind
var errorKindMessages = [...]string{
	"",
	"Authentication with the payment provider failed. Check your Consumer Key and Consumer Secret.",
	"The provider rejected the shortcode. Check your Business Shortcode.",
	"The phone number was rejected. Use the format 2547XXXXXXXX.",
	"The provider returned 401 Unauthorized. Verify the credentials for this environment.",
	"The provider returned 403 Forbidden. The app may lack the Lipa Na M-PESA permission.",
	"The provider returned an internal error. Try again in a few minutes.",
	"The provider is busy processing an earlier request for this subscriber. Wait a moment and retry.",
	"Could not reach the payment provider. Check the network connection of this server.",
	"TLS negotiation with the payment provider failed. Check the system certificates.",
	"The request to the payment provider timed out. Try again.",
	"An unexpected error occurred. Contact support if it persists.",
}

func (k ErrorKind) OperatorMessage() string {
	return errorKindMessages[k]
}

// UpstreamError is a classified provider rejection.
type UpstreamError struct {
	Kind       ErrorKind
	HTTPStatus int
	Body       string
}

func (e *UpstreamError) Error() string {
	return e.Kind.OperatorMessage()
}

// Stage tells the classifier which call failed: a 401 on the token fetch
// means bad consumer credentials, a 401 on the push call does not.
type UpstreamStage uint8

const (
	STAGE_TOKEN UpstreamStage = iota
	STAGE_STK_PUSH
	STAGE_STK_QUERY
)

type upstreamMatcher struct {
	match func(stage UpstreamStage, httpStatus int, body string) bool
	kind  ErrorKind
}

// evaluated in order, first hit wins
var upstreamMatchers = []upstreamMatcher{
	{
		match: func(stage UpstreamStage, status int, _ string) bool {
			return stage == STAGE_TOKEN && (status == 401 || status == 403 || status == 400)
		},
		kind: ERR_KIND_AUTHENTICATION_FAILED,
	},
	{
		match: func(_ UpstreamStage, _ int, body string) bool {
			return containsAny(body, "Invalid Authentication", "Invalid Access Token", "Invalid Credentials")
		},
		kind: ERR_KIND_AUTHENTICATION_FAILED,
	},
	{
		match: func(_ UpstreamStage, _ int, body string) bool {
			return containsAny(body, "Invalid ShortCode", "Merchant does not exist", "Invalid PartyB")
		},
		kind: ERR_KIND_INVALID_SHORTCODE,
	},
	{
		match: func(_ UpstreamStage, _ int, body string) bool {
			return containsAny(body, "Invalid PhoneNumber", "Invalid Msisdn", "Invalid PartyA")
		},
		kind: ERR_KIND_INVALID_PHONE,
	},
	{
		match: func(_ UpstreamStage, _ int, body string) bool {
			return containsAny(body, "system busy", "Spike arrest", "transaction is already in process", "500.001.1001")
		},
		kind: ERR_KIND_SYSTEM_BUSY,
	},
	{
		match: func(_ UpstreamStage, status int, _ string) bool { return status == 401 },
		kind:  ERR_KIND_HTTP_401,
	},
	{
		match: func(_ UpstreamStage, status int, _ string) bool { return status == 403 },
		kind:  ERR_KIND_HTTP_403,
	},
	{
		match: func(_ UpstreamStage, status int, _ string) bool { return status >= 500 },
		kind:  ERR_KIND_HTTP_500,
	},
}

func ClassifyUpstream(stage UpstreamStage, httpStatus int, body string) ErrorKind {
	for _, m := range upstreamMatchers {
		if m.match(stage, httpStatus, body) {
			return m.kind
		}
	}
	return ERR_KIND_UNEXPECTED
}

// ClassifyTransport separates local/network faults from provider rejections.
func ClassifyTransport(err error) ErrorKind {
	if err == nil {
		return ERR_KIND_NONE
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ERR_KIND_TIMEOUT
	}

	msg := err.Error()
	if containsAny(msg, "tls:", "x509:", "certificate") {
		return ERR_KIND_SSL_ERROR
	}
	if containsAny(msg, "context deadline exceeded", "Client.Timeout") {
		return ERR_KIND_TIMEOUT
	}

	return ERR_KIND_NETWORK_ERROR
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
