package checkoutstripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/lib/myvault"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

const (
	providerName = "stripe"

	CodeClientSecretMissing    = "stripe-client-secret-missing"
	CodePaymentMethodMissing   = "stripe-payment-method-missing"
	CodeAuthenticationRequired = "stripe-authentication-required"
)

// The backend created a PaymentIntent whose client secret was handed out before the card form was shown.
// The intent is confirmed here and the backend is told which intent settles the basket.
type strategy struct {
	apiKey string
	api    basketapi.API
	payer  Payer
	vault  myvault.VaultReader[myvault.Token]
	logger mylog.Logger
}

func New(apiKey string, api basketapi.API, payer Payer, vault myvault.VaultReader[myvault.Token]) providers.Strategy {
	return &strategy{
		apiKey: apiKey,
		api:    api,
		payer:  payer,
		vault:  vault,
		logger: mylog.New("checkoutstripe"),
	}
}

func (s *strategy) RequiresClientSecret() bool {
	return true
}

func (s *strategy) AttemptCheckout(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
	s.logger.Log(c, req.SessionUID, mylog.SeverityInfo, "Start stripe checkout for basket %d", b.BasketID)

	intentID := IntentIDFromClientSecret(req.ClientSecretID)
	if intentID == "" {
		return basket.Basket{}, checkouterrors.NewProviderFailure(CodeClientSecretMissing, "",
			fmt.Errorf("no client secret for basket %d", b.BasketID))
	}
	if req.PaymentMethodID == "" {
		return basket.Basket{}, checkouterrors.NewProviderFailure(CodePaymentMethodMissing, "",
			fmt.Errorf("no payment method for basket %d", b.BasketID))
	}

	params := stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(req.PaymentMethodID),
	}
	if req.ReturnURL != "" {
		params.ReturnURL = stripe.String(req.ReturnURL)
	}

	s.setupAuthentication(c, req.SessionUID)
	intent, err := s.payer.ConfirmPaymentIntent(c, intentID, params)
	if err != nil {
		return basket.Basket{}, confirmationError(err)
	}

	err = checkIntentStatus(intent)
	if err != nil {
		s.logger.Log(c, req.SessionUID, mylog.SeverityWarn, "Payment intent %s not settled: %s", intent.ID, err)
		return basket.Basket{}, err
	}

	result, err := s.api.SubmitPayment(c, basket.PaymentMethodStripe, basketapi.PaymentRequest{
		BasketID:        b.BasketID,
		PaymentIntentID: intent.ID,
		ReturnURL:       req.ReturnURL,
	})
	if err != nil {
		return basket.Basket{}, err
	}

	return result, nil
}

func (s *strategy) setupAuthentication(c context.Context, sessionUID string) {
	token, exist, err := s.vault.Get(c, myvault.TokenUID(providerName))
	if err != nil || !exist || token.ProviderName != providerName || token.AccessToken == "" {
		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Using api key")
		s.payer.UseAPIKey(s.apiKey)
		return
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Using access token")
	s.payer.UseToken(token.AccessToken)
}

// IntentIDFromClientSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromClientSecret(clientSecret string) string {
	intentID, _, found := strings.Cut(clientSecret, "_secret_")
	if !found {
		return ""
	}
	return intentID
}

func confirmationError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		return checkouterrors.NewDeclined(stripeErr.Msg, err)
	}
	return fmt.Errorf("error confirming payment intent: %w", err)
}

func checkIntentStatus(intent stripe.PaymentIntent) error {
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
		return nil
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		return checkouterrors.NewDeclined("", fmt.Errorf("payment intent %s requires another payment method", intent.ID))
	case stripe.PaymentIntentStatusCanceled:
		return checkouterrors.NewAborted(fmt.Errorf("payment intent %s canceled", intent.ID))
	default:
		return checkouterrors.NewProviderFailure(CodeAuthenticationRequired, "",
			fmt.Errorf("payment intent %s in status %s", intent.ID, intent.Status))
	}
}
