package checkoutapplepay

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

const (
	CodeMerchantValidationFailure = "apple-pay-merchant-validation-failure"
	defaultLabel                  = "Checkout"
	defaultCountryCode            = "US"
)

type strategy struct {
	api    basketapi.API
	sheet  PaymentSheet
	logger mylog.Logger
}

func New(api basketapi.API, sheet PaymentSheet) providers.Strategy {
	return &strategy{
		api:    api,
		sheet:  sheet,
		logger: mylog.New("checkoutapplepay"),
	}
}

func (s *strategy) AttemptCheckout(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
	s.logger.Log(c, req.SessionUID, mylog.SeverityInfo, "Start apple-pay checkout for basket %d", b.BasketID)

	token, err := s.sheet.Authorize(c, sheetRequest(b, req), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSheetCancelled), errors.Is(err, context.Canceled):
			s.logger.Log(c, req.SessionUID, mylog.SeverityInfo, "Apple pay sheet dismissed for basket %d", b.BasketID)
			return basket.Basket{}, checkouterrors.NewAborted(err)
		case errors.Is(err, ErrMerchantValidation):
			return basket.Basket{}, checkouterrors.NewProviderFailure(CodeMerchantValidationFailure, "", err)
		default:
			return basket.Basket{}, fmt.Errorf("error authorizing apple pay sheet: %w", err)
		}
	}

	result, err := s.api.SubmitPayment(c, basket.PaymentMethodApplePay, basketapi.PaymentRequest{
		BasketID:  b.BasketID,
		Token:     token,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		return basket.Basket{}, err
	}

	return result, nil
}

func sheetRequest(b basket.Basket, req providers.CheckoutRequest) SheetRequest {
	countryCode := req.CountryCode
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	return SheetRequest{
		Label:        defaultLabel,
		CountryCode:  countryCode,
		CurrencyCode: b.Currency,
		Total:        b.OrderTotal.StringFixed(2),
	}
}
