package checkoutadyen

import (
	"context"
	"fmt"
	"time"

	"github.com/adyen/adyen-go-api-library/v6/src/checkout"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/lib/mytime"
	"github.com/MarcGrol/basketcheckout/lib/myvault"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

const (
	providerName = "adyen"

	CodePayByLinkInvalid = "adyen-pay-by-link-invalid"
	defaultLocale        = "en-US"
)

type Config struct {
	Environment     string
	MerchantAccount string
	APIKey          string
}

// Adyen hosts the payment page behind a pay-by-link. The shopper is sent to the link once the backend
// accepted it as payment reference.
type strategy struct {
	cfg    Config
	api    basketapi.API
	payer  Payer
	vault  myvault.VaultReader[myvault.Token]
	nower  mytime.Nower
	logger mylog.Logger
}

func New(cfg Config, api basketapi.API, payer Payer, vault myvault.VaultReader[myvault.Token], nower mytime.Nower) providers.Strategy {
	return &strategy{
		cfg:    cfg,
		api:    api,
		payer:  payer,
		vault:  vault,
		nower:  nower,
		logger: mylog.New("checkoutadyen"),
	}
}

func (s *strategy) AttemptCheckout(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
	s.logger.Log(c, req.SessionUID, mylog.SeverityInfo, "Start pbl-checkout for basket %d", b.BasketID)

	linkRequest := s.payByLinkRequest(b, req)
	err := validatePayByLinkRequest(linkRequest)
	if err != nil {
		return basket.Basket{}, checkouterrors.NewProviderFailure(CodePayByLinkInvalid, "", err)
	}

	s.setupAuthentication(c, req.SessionUID)
	resp, err := s.payer.CreatePayByLink(c, linkRequest)
	if err != nil {
		return basket.Basket{}, err
	}

	result, err := s.api.SubmitPayment(c, basket.PaymentMethodAdyen, basketapi.PaymentRequest{
		BasketID:         b.BasketID,
		PaymentReference: resp.Id,
		ReturnURL:        req.ReturnURL,
	})
	if err != nil {
		return basket.Basket{}, err
	}

	result.RedirectURL = resp.Url
	return result, nil
}

func (s *strategy) payByLinkRequest(b basket.Basket, req providers.CheckoutRequest) checkout.CreatePaymentLinkRequest {
	locale := req.Locale
	if locale == "" {
		locale = defaultLocale
	}
	reference := fmt.Sprintf("%s-%d", req.SessionUID, b.BasketID)

	return checkout.CreatePaymentLinkRequest{
		Amount: checkout.Amount{
			Currency: b.Currency,
			Value:    b.OrderTotal.Shift(2).IntPart(),
		},
		CountryCode:            req.CountryCode,
		MerchantAccount:        s.cfg.MerchantAccount,
		MerchantOrderReference: reference,
		Reference:              reference,
		ReturnUrl:              req.ReturnURL,
		ShopperEmail:           req.Email,
		ShopperLocale:          locale,
	}
}

func validatePayByLinkRequest(req checkout.CreatePaymentLinkRequest) error {
	if req.Amount.Currency == "" || req.Amount.Value == 0 ||
		req.ReturnUrl == "" || req.Reference == "" || req.MerchantAccount == "" {
		return fmt.Errorf("missing mandatory field")
	}

	return nil
}

func (s *strategy) setupAuthentication(c context.Context, sessionUID string) {
	token, exist, err := s.vault.Get(c, myvault.TokenUID(providerName))
	if err != nil || !exist || token.ProviderName != providerName || token.AccessToken == "" ||
		(token.ExpiresIn > 0 && token.CreatedAt.Add(time.Duration(token.ExpiresIn)*time.Second).Before(s.nower.Now())) {
		s.payer.UseAPIKey(s.cfg.APIKey)
		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Using api-key")
		return
	}

	s.payer.UseToken(token.AccessToken)
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Using access token")
}
