package orchestrator

import (
	"github.com/MarcGrol/basketcheckout/services/alerts"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkoutstate"
)

// Projection is what the presentation layer reads.
type Projection struct {
	Loading                  bool                          `json:"loading"`
	Loaded                   bool                          `json:"loaded"`
	Submitting               bool                          `json:"submitting"`
	IsBasketProcessing       bool                          `json:"isBasketProcessing"`
	Redirect                 bool                          `json:"redirect"`
	RedirectURL              string                        `json:"redirectUrl,omitempty"`
	PaymentMethod            basket.PaymentMethod          `json:"paymentMethod,omitempty"`
	Basket                   basket.Basket                 `json:"basket"`
	IsEmpty                  bool                          `json:"isEmpty"`
	OrderType                basket.OrderType              `json:"orderType"`
	ClientSecretID           string                        `json:"clientSecretId,omitempty"`
	IsClientSecretProcessing bool                          `json:"isClientSecretProcessing"`
	ShowPaymentForm          map[basket.PaymentMethod]bool `json:"showPaymentForm"`
	Alerts                   []alerts.Alert                `json:"alerts"`
	FieldErrors              map[string]string             `json:"fieldErrors,omitempty"`
}

func (e *Engine) Projection() Projection {
	state := e.store.State()

	showPaymentForm := map[basket.PaymentMethod]bool{}
	for _, method := range e.registry.Methods() {
		showPaymentForm[method] = e.showPaymentForm(state, method)
	}

	fieldErrors := e.formErrors.Get(alerts.PaymentForm)
	if len(fieldErrors) == 0 {
		fieldErrors = nil
	}

	return Projection{
		Loading:                  state.Loading,
		Loaded:                   state.Loaded,
		Submitting:               state.Submitting,
		IsBasketProcessing:       state.IsBasketProcessing,
		Redirect:                 state.Redirect,
		RedirectURL:              state.RedirectURL,
		PaymentMethod:            state.PaymentMethod,
		Basket:                   state.Basket,
		IsEmpty:                  state.Basket.IsEmpty(),
		OrderType:                state.Basket.OrderType,
		ClientSecretID:           state.ClientSecret.ID(),
		IsClientSecretProcessing: state.IsClientSecretProcessing,
		ShowPaymentForm:          showPaymentForm,
		Alerts:                   e.alerts.List(),
		FieldErrors:              fieldErrors,
	}
}

// ShowPaymentForm tells if the form of method can be presented. A provider that needs a client
// secret keeps loading until the secret arrived.
func (e *Engine) ShowPaymentForm(method basket.PaymentMethod) bool {
	return e.showPaymentForm(e.store.State(), method)
}

func (e *Engine) showPaymentForm(state checkoutstate.State, method basket.PaymentMethod) bool {
	if state.Loading {
		return false
	}
	if e.registry.RequiresClientSecret(method) {
		return state.ClientSecret.ID() != ""
	}
	return true
}
