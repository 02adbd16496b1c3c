package basketapi

import (
	"context"

	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

// PaymentRequest is what a provider strategy submits to the backend to settle a basket.
type PaymentRequest struct {
	BasketID            int                       `json:"basket_id"`
	CaptureContextKeyID string                    `json:"capture_context_key_id,omitempty"`
	Token               string                    `json:"token,omitempty"`
	PaymentIntentID     string                    `json:"payment_intent_id,omitempty"`
	PaymentReference    string                    `json:"payment_reference,omitempty"`
	ReturnURL           string                    `json:"return_url,omitempty"`
	Billing             *providers.BillingAddress `json:"billing_address,omitempty"`
}

type QuantityRequest struct {
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type CouponRequest struct {
	Code string `json:"code"`
}

// API is the basket backend, as seen by one shopper. Failures are reported as *checkouterrors.RawError
// whenever the backend answered.
//
//go:generate mockgen -source=api.go -package basketapi -destination api_mock.go API
type API interface {
	GetBasket(c context.Context) (basket.Basket, error)
	GetBasketWithDiscount(c context.Context, discountJWT string) (basket.Basket, error)
	GetDiscount(c context.Context, courseKey string) (basket.Discount, error)
	GetClientSecret(c context.Context) (basket.ClientSecret, error)
	AddCoupon(c context.Context, code string) (basket.Basket, error)
	UpdateQuantity(c context.Context, sku string, quantity int) (basket.Basket, error)
	SubmitPayment(c context.Context, method basket.PaymentMethod, req PaymentRequest) (basket.Basket, error)
}
