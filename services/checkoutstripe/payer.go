package checkoutstripe

import (
	"context"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

//go:generate mockgen -source=payer.go -package checkoutstripe -destination payer_mock.go Payer
type Payer interface {
	UseAPIKey(key string)
	UseToken(accessToken string)
	ConfirmPaymentIntent(c context.Context, intentID string, params stripe.PaymentIntentConfirmParams) (stripe.PaymentIntent, error)
}

type stripePayer struct {
	key string
}

func NewPayer() Payer {
	return &stripePayer{}
}

func (p *stripePayer) UseAPIKey(apiKey string) {
	p.key = apiKey
}

func (p *stripePayer) UseToken(accessToken string) {
	p.key = accessToken
}

// ConfirmPaymentIntent returns stripe errors unwrapped so card errors can be recognized.
func (p *stripePayer) ConfirmPaymentIntent(c context.Context, intentID string, params stripe.PaymentIntentConfirmParams) (stripe.PaymentIntent, error) {
	params.Context = c
	client := paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: p.key}
	intent, err := client.Confirm(intentID, &params)
	if err != nil {
		return stripe.PaymentIntent{}, err
	}

	return *intent, nil
}
