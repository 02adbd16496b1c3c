package checkoutapplepay

import (
	"context"
	"errors"

	"github.com/MarcGrol/basketcheckout/services/providers"
)

var (
	ErrSheetCancelled     = errors.New("apple pay sheet cancelled by shopper")
	ErrMerchantValidation = errors.New("apple pay merchant validation failed")
)

type SheetRequest struct {
	Label        string
	CountryCode  string
	CurrencyCode string
	Total        string
}

// PaymentSheet presents the Apple Pay sheet and returns the payment token once the shopper authorized it.
//
//go:generate mockgen -source=sheet.go -package checkoutapplepay -destination sheet_mock.go PaymentSheet
type PaymentSheet interface {
	Authorize(c context.Context, sheet SheetRequest, req providers.CheckoutRequest) (string, error)
}

// The sheet runs in the browser; what reaches us is the token it produced, or nothing when dismissed.
type postedSheet struct{}

func NewPostedSheet() PaymentSheet {
	return postedSheet{}
}

func (postedSheet) Authorize(c context.Context, sheet SheetRequest, req providers.CheckoutRequest) (string, error) {
	if req.ApplePayToken == "" {
		return "", ErrSheetCancelled
	}
	return req.ApplePayToken, nil
}
