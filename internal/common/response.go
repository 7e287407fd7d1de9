package common

import (
	"encoding/json"
	"net/http"

	"github.com/starpaykids/allowance/pkg/allowance"
)

type ResponseType string

const (
	ResponseTypeObject ResponseType = "object"
	ResponseTypeError  ResponseType = "error"
)

// RedirectMeta signals a client-side navigation to the caller. Redirects are
// hints for the front end, never HTTP redirects.
type RedirectMeta struct {
	Redirect string `json:"redirect"`
}

// Response is the default response object
type Response struct {
	// The response type
	// in: body
	ResponseType ResponseType `json:"response_type"`
	Object       any          `json:"object,omitempty"`
	Error        *ErrorObject `json:"error,omitempty"`
	Meta         any          `json:"meta,omitempty"`
}

type ErrorObject struct {
	Code    allowance.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func Body(w http.ResponseWriter, body any, meta any) error {

	b, err := json.Marshal(&Response{
		ResponseType: ResponseTypeObject,
		Object:       body,
		Meta:         meta,
	})
	if err != nil {
		return err
	}

	w.Header().Add("Content-Type", "application/json")
	w.Write(b)

	return nil
}

// ErrorBody writes a classified workflow error. The message is the exact text
// the front end displays; meta may carry a redirect hint.
func ErrorBody(w http.ResponseWriter, status int, ferr *allowance.FlowError, meta any) error {

	b, err := json.Marshal(&Response{
		ResponseType: ResponseTypeError,
		Error: &ErrorObject{
			Code:    ferr.Code,
			Message: ferr.Message,
		},
		Meta: meta,
	})
	if err != nil {
		return err
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)

	return nil
}
