package checkouterrors

import (
	"fmt"
	"strings"

	"github.com/MarcGrol/basketcheckout/services/basket"
)

type FieldError struct {
	FieldName   string `json:"field_name"`
	UserMessage string `json:"user_message"`
}

// RawError is the one shape in which the basket backend and the payment providers report a failure.
type RawError struct {
	Aborted     bool
	Declined    bool
	Code        string
	UserMessage string
	FieldErrors []FieldError
	Messages    []basket.Message
	Basket      *basket.Basket
	HTTPStatus  int
	Err         error
}

func (e *RawError) Error() string {
	parts := []string{}
	if e.Aborted {
		parts = append(parts, "aborted")
	}
	if e.Declined {
		parts = append(parts, "declined")
	}
	if e.HTTPStatus != 0 {
		parts = append(parts, fmt.Sprintf("status %d", e.HTTPStatus))
	}
	if e.Code != "" {
		parts = append(parts, "code "+e.Code)
	}
	if len(e.FieldErrors) > 0 {
		parts = append(parts, fmt.Sprintf("%d field errors", len(e.FieldErrors)))
	}
	if len(e.Messages) > 0 {
		parts = append(parts, fmt.Sprintf("%d messages", len(e.Messages)))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return "checkout error: " + strings.Join(parts, ", ")
}

func (e *RawError) Unwrap() error {
	return e.Err
}

func (e *RawError) hasStructuredPayload() bool {
	return e.Basket != nil || len(e.Messages) > 0 || len(e.FieldErrors) > 0
}

// NewAborted reports that the shopper or the provider SDK cancelled the attempt.
func NewAborted(err error) *RawError {
	return &RawError{
		Aborted: true,
		Err:     err,
	}
}

// NewProviderFailure reports a client-side failure identified by a message code only.
func NewProviderFailure(code string, userMessage string, err error) *RawError {
	return &RawError{
		Code:        code,
		UserMessage: userMessage,
		Err:         err,
	}
}

// NewDeclined reports that the provider refused the transaction.
func NewDeclined(userMessage string, err error) *RawError {
	return &RawError{
		Declined:    true,
		UserMessage: userMessage,
		Err:         err,
	}
}
