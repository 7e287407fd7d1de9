package allowance

// ErrorCode classifies every user-visible failure in the workflow. Errors are
// terminal for the current action: recovered into a displayed message, never
// rethrown onward, nothing retried.
type ErrorCode string

const (
	ErrorCodeWalletNotFound      ErrorCode = "wallet_not_found"
	ErrorCodeAuthorizationDenied ErrorCode = "authorization_denied"
	ErrorCodeConnectionFailed    ErrorCode = "connection_failed"
	ErrorCodeNoSession           ErrorCode = "no_session"
	ErrorCodeEmptyRecipient      ErrorCode = "empty_recipient"
	ErrorCodeInvalidAmount       ErrorCode = "invalid_amount"
	ErrorCodeGatewayFailure      ErrorCode = "gateway_failure"
	ErrorCodeUnexpected          ErrorCode = "unexpected"
)

// User-facing messages, kept verbatim from the product copy.
const (
	MsgWalletNotFound   = "Freighter wallet not found. Please install Freighter extension."
	MsgConnectionFailed = "Failed to connect wallet. Please try again."
	MsgEmptyRecipient   = "Lütfen çocuk cüzdan adresini girin"
	MsgInvalidAmount    = "Lütfen geçerli bir harçlık miktarı girin"
	MsgNoSession        = "Cüzdan bağlantısı bulunamadı"
	MsgSubmitFailed     = "Harçlık gönderimi başarısız. Lütfen tekrar deneyin."
	MsgGatewayFallback  = "Harçlık gönderimi başarısız"

	// MsgSentFmt takes the literal amount text the user typed.
	MsgSentFmt = "%s XLM harçlık başarıyla gönderildi!"
)

// FlowError is a classified, user-displayable workflow failure.
type FlowError struct {
	Code    ErrorCode
	Message string
}

func (e *FlowError) Error() string {
	return e.Message
}

func ErrWalletNotFound() *FlowError {
	return &FlowError{Code: ErrorCodeWalletNotFound, Message: MsgWalletNotFound}
}

// ErrAuthorizationDenied surfaces the wallet extension's message verbatim.
func ErrAuthorizationDenied(msg string) *FlowError {
	return &FlowError{Code: ErrorCodeAuthorizationDenied, Message: msg}
}

func ErrConnectionFailed() *FlowError {
	return &FlowError{Code: ErrorCodeConnectionFailed, Message: MsgConnectionFailed}
}

func ErrNoSession() *FlowError {
	return &FlowError{Code: ErrorCodeNoSession, Message: MsgNoSession}
}

func ErrEmptyRecipient() *FlowError {
	return &FlowError{Code: ErrorCodeEmptyRecipient, Message: MsgEmptyRecipient}
}

func ErrInvalidAmount() *FlowError {
	return &FlowError{Code: ErrorCodeInvalidAmount, Message: MsgInvalidAmount}
}

// ErrGatewayFailure surfaces the gateway's message verbatim, or the generic
// fallback when the gateway supplied none.
func ErrGatewayFailure(msg string) *FlowError {
	if msg == "" {
		msg = MsgGatewayFallback
	}
	return &FlowError{Code: ErrorCodeGatewayFailure, Message: msg}
}

func ErrUnexpected() *FlowError {
	return &FlowError{Code: ErrorCodeUnexpected, Message: MsgSubmitFailed}
}
