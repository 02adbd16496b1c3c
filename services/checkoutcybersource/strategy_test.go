package checkoutcybersource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

func TestAttemptCheckout(t *testing.T) {
	billing := providers.BillingAddress{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Address:    "Main street 1",
		City:       "London",
		Country:    "GB",
		PostalCode: "N1 9GU",
	}

	t.Run("Requires client secret", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, sut := setup(ctrl)

		// when
		requirer, ok := sut.(providers.SecretRequirer)

		// then
		assert.True(t, ok)
		assert.True(t, requirer.RequiresClientSecret())
	})

	t.Run("Card token with capture context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		api, sut := setup(ctrl)

		// given
		api.EXPECT().SubmitPayment(gomock.Any(), basket.PaymentMethodCybersource, basketapi.PaymentRequest{
			BasketID:            3,
			CaptureContextKeyID: "key-1",
			Token:               "tok-1",
			Billing:             &billing,
		}).Return(basket.Basket{BasketID: 4, Products: []basket.Product{}, RedirectURL: "/receipt"}, nil)

		// when
		result, err := sut.AttemptCheckout(context.TODO(), basket.Basket{BasketID: 3}, providers.CheckoutRequest{
			ClientSecretID: "key-1",
			CardToken:      "tok-1",
			Billing:        billing,
		})

		// then
		assert.NoError(t, err)
		assert.Equal(t, "/receipt", result.RedirectURL)
	})

	t.Run("Missing capture context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, sut := setup(ctrl)

		// when
		_, err := sut.AttemptCheckout(context.TODO(), basket.Basket{BasketID: 3}, providers.CheckoutRequest{CardToken: "tok-1"})

		// then
		envelope := checkouterrors.Classify(err)
		assert.Equal(t, checkouterrors.KindProviderFailure, envelope.Kind)
		assert.Equal(t, codeCaptureContextMissing, envelope.Messages[0].Code)
	})

	t.Run("Missing card token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, sut := setup(ctrl)

		// when
		_, err := sut.AttemptCheckout(context.TODO(), basket.Basket{BasketID: 3}, providers.CheckoutRequest{ClientSecretID: "key-1"})

		// then
		assert.Equal(t, codeCardTokenMissing, checkouterrors.Classify(err).Messages[0].Code)
	})

	t.Run("Billing address rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		api, sut := setup(ctrl)

		// given
		api.EXPECT().SubmitPayment(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{}, &checkouterrors.RawError{
			FieldErrors: []checkouterrors.FieldError{{FieldName: "postal_code", UserMessage: "Required"}},
		})

		// when
		_, err := sut.AttemptCheckout(context.TODO(), basket.Basket{BasketID: 3}, providers.CheckoutRequest{
			ClientSecretID: "key-1",
			CardToken:      "tok-1",
		})

		// then
		envelope := checkouterrors.Classify(err)
		assert.Equal(t, checkouterrors.KindFieldValidation, envelope.Kind)
		assert.Equal(t, map[string]string{"postalCode": "Required"}, envelope.FieldErrors)
	})
}

func setup(ctrl *gomock.Controller) (*basketapi.MockAPI, providers.Strategy) {
	api := basketapi.NewMockAPI(ctrl)
	return api, New(api)
}
