package checkoutmollie

import (
	"context"
	"fmt"
	"testing"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/basketcheckout/lib/myvault"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

var (
	current = basket.Basket{
		BasketID:   3,
		Currency:   "EUR",
		OrderTotal: decimal.RequireFromString("123"),
	}

	paymentRequest = mollie.Payment{
		Amount: &mollie.Amount{
			Currency: "EUR",
			Value:    "123.00",
		},
		Description: "Basket 3",
		RedirectURL: "http://localhost:8080/checkout/123",
	}

	paymentResponse = mollie.Payment{
		ID: "tr_123",
		Links: mollie.PaymentLinks{
			Checkout: &mollie.URL{Href: "https://www.mollie.com/checkout/tr_123"},
		},
	}
)

func TestAttemptCheckout(t *testing.T) {
	request := providers.CheckoutRequest{
		SessionUID: "123",
		ReturnURL:  "http://localhost:8080/checkout/123",
	}

	t.Run("Hosted payment page with api key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		vault, payer, api, sut := setup(ctrl)

		// given
		vault.EXPECT().Get(gomock.Any(), "currentToken_mollie").Return(myvault.Token{}, false, nil)
		payer.EXPECT().UseAPIKey("my_api_key")
		payer.EXPECT().CreatePayment(gomock.Any(), paymentRequest).Return(paymentResponse, nil)
		api.EXPECT().SubmitPayment(gomock.Any(), basket.PaymentMethodMollie, basketapi.PaymentRequest{
			BasketID:         3,
			PaymentReference: "tr_123",
			ReturnURL:        "http://localhost:8080/checkout/123",
		}).Return(basket.Basket{BasketID: 4, Products: []basket.Product{}}, nil)

		// when
		result, err := sut.AttemptCheckout(context.TODO(), current, request)

		// then
		assert.NoError(t, err)
		assert.Equal(t, "https://www.mollie.com/checkout/tr_123", result.RedirectURL)
	})

	t.Run("Hosted payment page with access token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		vault, payer, api, sut := setup(ctrl)

		// given
		withProfile := paymentRequest
		withProfile.ProfileID = "pfl_123"
		withProfile.TestMode = true
		vault.EXPECT().Get(gomock.Any(), "currentToken_mollie").
			Return(myvault.Token{ProviderName: "mollie", AccessToken: "access"}, true, nil)
		payer.EXPECT().UseToken("access")
		payer.EXPECT().CreatePayment(gomock.Any(), withProfile).Return(paymentResponse, nil)
		api.EXPECT().SubmitPayment(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{}, nil)

		// when
		_, err := sut.AttemptCheckout(context.TODO(), current, request)

		// then
		assert.NoError(t, err)
	})

	t.Run("Mollie fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		vault, payer, _, sut := setup(ctrl)

		// given
		vault.EXPECT().Get(gomock.Any(), gomock.Any()).Return(myvault.Token{}, false, nil)
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(mollie.Payment{}, fmt.Errorf("mollie down"))

		// when
		_, err := sut.AttemptCheckout(context.TODO(), current, request)

		// then
		assert.Equal(t, checkouterrors.KindUnknown, checkouterrors.Classify(err).Kind)
	})

	t.Run("No checkout link", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		vault, payer, _, sut := setup(ctrl)

		// given
		vault.EXPECT().Get(gomock.Any(), gomock.Any()).Return(myvault.Token{}, false, nil)
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(mollie.Payment{ID: "tr_123"}, nil)

		// when
		_, err := sut.AttemptCheckout(context.TODO(), current, request)

		// then
		assert.Equal(t, CodeCheckoutLinkMissing, checkouterrors.Classify(err).Messages[0].Code)
	})
}

func setup(ctrl *gomock.Controller) (*myvault.MockVaultReader[myvault.Token], *MockPayer, *basketapi.MockAPI, providers.Strategy) {
	vault := myvault.NewMockVaultReader[myvault.Token](ctrl)
	payer := NewMockPayer(ctrl)
	api := basketapi.NewMockAPI(ctrl)
	return vault, payer, api, New(Config{APIKey: "my_api_key", ProfileID: "pfl_123"}, api, payer, vault)
}
