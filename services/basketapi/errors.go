package basketapi

import (
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
)

// ErrorBody is the json body the backend returns with any non-2xx status.
type ErrorBody struct {
	ErrorCode   string                      `json:"error_code,omitempty"`
	UserMessage string                      `json:"user_message,omitempty"`
	Declined    bool                        `json:"declined,omitempty"`
	FieldErrors []checkouterrors.FieldError `json:"field_errors,omitempty"`
	Messages    []basket.Message            `json:"messages,omitempty"`
	Basket      *basket.Basket              `json:"basket,omitempty"`
}

func (b ErrorBody) toRawError(httpStatus int) *checkouterrors.RawError {
	raw := &checkouterrors.RawError{
		Declined:    b.Declined,
		Code:        b.ErrorCode,
		UserMessage: b.UserMessage,
		FieldErrors: b.FieldErrors,
		Messages:    b.Messages,
		HTTPStatus:  httpStatus,
	}
	if b.Basket != nil {
		attached := b.Basket.Normalized()
		raw.Basket = &attached
	}
	return raw
}

func parseErrorBody(httpStatus int, body []byte) *checkouterrors.RawError {
	errorBody := ErrorBody{}
	err := json.Unmarshal(body, &errorBody)
	if err != nil {
		return &checkouterrors.RawError{
			HTTPStatus: httpStatus,
			Err:        fmt.Errorf("unparseable error response: %s", err),
		}
	}
	return errorBody.toRawError(httpStatus)
}
