package providers

import (
	"context"

	"github.com/MarcGrol/basketcheckout/services/basket"
)

type BillingAddress struct {
	FirstName                string `form:"firstName" json:"first_name,omitempty"`
	LastName                 string `form:"lastName" json:"last_name,omitempty"`
	Address                  string `form:"address" json:"address_line1,omitempty"`
	Unit                     string `form:"unit" json:"address_line2,omitempty"`
	City                     string `form:"city" json:"city,omitempty"`
	Country                  string `form:"country" json:"country,omitempty"`
	State                    string `form:"state" json:"state,omitempty"`
	PostalCode               string `form:"postalCode" json:"postal_code,omitempty"`
	OrganizationName         string `form:"organizationName" json:"organization_name,omitempty"`
	PurchasedForOrganization bool   `form:"purchasedForOrganization" json:"purchased_for_organization,omitempty"`
}

// CheckoutRequest carries the provider specific arguments of a payment submission.
type CheckoutRequest struct {
	SessionUID     string `form:"-"`
	ClientSecretID string `form:"-"`

	ReturnURL       string         `form:"returnUrl"`
	Locale          string         `form:"locale"`
	Email           string         `form:"email"`
	CountryCode     string         `form:"countryCode"`
	Billing         BillingAddress `form:"billing"`
	CardToken       string         `form:"cardToken"`
	PaymentMethodID string         `form:"paymentMethodId"`
	ApplePayToken   string         `form:"applePayToken"`
}

//go:generate mockgen -source=api.go -package providers -destination strategy_mock.go Strategy
type Strategy interface {
	// AttemptCheckout either returns a fresh basket or a raw error for the classifier.
	AttemptCheckout(c context.Context, b basket.Basket, req CheckoutRequest) (basket.Basket, error)
}

// SecretRequirer is implemented by strategies that need a client secret before their form can be shown.
type SecretRequirer interface {
	RequiresClientSecret() bool
}
