package checkoutcybersource

import (
	"context"
	"fmt"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

const (
	codeCaptureContextMissing = "capture-context-missing"
	codeCardTokenMissing      = "card-token-missing"
)

// The card form is tokenized in the browser against a capture context issued by the backend.
// The backend settles the payment with that token and validates the billing address.
type strategy struct {
	api    basketapi.API
	logger mylog.Logger
}

func New(api basketapi.API) providers.Strategy {
	return &strategy{
		api:    api,
		logger: mylog.New("checkoutcybersource"),
	}
}

func (s *strategy) RequiresClientSecret() bool {
	return true
}

func (s *strategy) AttemptCheckout(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
	s.logger.Log(c, req.SessionUID, mylog.SeverityInfo, "Start cybersource checkout for basket %d", b.BasketID)

	if req.ClientSecretID == "" {
		return basket.Basket{}, checkouterrors.NewProviderFailure(codeCaptureContextMissing, "",
			fmt.Errorf("no capture context for basket %d", b.BasketID))
	}
	if req.CardToken == "" {
		return basket.Basket{}, checkouterrors.NewProviderFailure(codeCardTokenMissing, "",
			fmt.Errorf("no card token for basket %d", b.BasketID))
	}

	billing := req.Billing
	result, err := s.api.SubmitPayment(c, basket.PaymentMethodCybersource, basketapi.PaymentRequest{
		BasketID:            b.BasketID,
		CaptureContextKeyID: req.ClientSecretID,
		Token:               req.CardToken,
		ReturnURL:           req.ReturnURL,
		Billing:             &billing,
	})
	if err != nil {
		return basket.Basket{}, err
	}

	return result, nil
}
