package checkoutmollie

import (
	"context"
	"fmt"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/lib/myvault"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

const (
	providerName = "mollie"

	CodeCheckoutLinkMissing = "mollie-checkout-link-missing"
)

type Config struct {
	APIKey    string
	ProfileID string
}

// Mollie hosts the payment page. The shopper is sent there once the backend accepted the payment reference.
type strategy struct {
	cfg    Config
	api    basketapi.API
	payer  Payer
	vault  myvault.VaultReader[myvault.Token]
	logger mylog.Logger
}

func New(cfg Config, api basketapi.API, payer Payer, vault myvault.VaultReader[myvault.Token]) providers.Strategy {
	return &strategy{
		cfg:    cfg,
		api:    api,
		payer:  payer,
		vault:  vault,
		logger: mylog.New("checkoutmollie"),
	}
}

func (s *strategy) AttemptCheckout(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
	s.logger.Log(c, req.SessionUID, mylog.SeverityInfo, "Start mollie checkout for basket %d", b.BasketID)

	request := mollie.Payment{
		Amount: &mollie.Amount{
			Currency: b.Currency,
			Value:    b.OrderTotal.StringFixed(2),
		},
		Description: fmt.Sprintf("Basket %d", b.BasketID),
		RedirectURL: req.ReturnURL,
	}
	request.ProfileID, request.TestMode = s.setupAuthentication(c, req.SessionUID)

	payment, err := s.payer.CreatePayment(c, request)
	if err != nil {
		return basket.Basket{}, err
	}
	if payment.Links.Checkout == nil || payment.Links.Checkout.Href == "" {
		return basket.Basket{}, checkouterrors.NewProviderFailure(CodeCheckoutLinkMissing, "",
			fmt.Errorf("mollie payment %s has no checkout link", payment.ID))
	}

	result, err := s.api.SubmitPayment(c, basket.PaymentMethodMollie, basketapi.PaymentRequest{
		BasketID:         b.BasketID,
		PaymentReference: payment.ID,
		ReturnURL:        req.ReturnURL,
	})
	if err != nil {
		return basket.Basket{}, err
	}

	result.RedirectURL = payment.Links.Checkout.Href
	return result, nil
}

func (s *strategy) setupAuthentication(c context.Context, sessionUID string) (string, bool) {
	token, exist, err := s.vault.Get(c, myvault.TokenUID(providerName))
	if err != nil || !exist || token.ProviderName != providerName || token.AccessToken == "" {
		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Using api key")
		s.payer.UseAPIKey(s.cfg.APIKey)
		return "", false
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Using access token")
	s.payer.UseToken(token.AccessToken)

	// an organization access token needs the profile and runs in test mode
	return s.cfg.ProfileID, true
}
