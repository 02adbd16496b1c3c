package checkoutpaypal

import (
	"context"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

// The backend creates the PayPal payment and answers with the PayPal approval page as redirect.
type strategy struct {
	api    basketapi.API
	logger mylog.Logger
}

func New(api basketapi.API) providers.Strategy {
	return &strategy{
		api:    api,
		logger: mylog.New("checkoutpaypal"),
	}
}

func (s *strategy) AttemptCheckout(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
	s.logger.Log(c, req.SessionUID, mylog.SeverityInfo, "Start paypal checkout for basket %d", b.BasketID)

	result, err := s.api.SubmitPayment(c, basket.PaymentMethodPayPal, basketapi.PaymentRequest{
		BasketID:  b.BasketID,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		return basket.Basket{}, err
	}

	return result, nil
}
