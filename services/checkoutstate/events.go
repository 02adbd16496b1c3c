package checkoutstate

import "github.com/MarcGrol/basketcheckout/services/basket"

// Event is a state transition understood by Reduce.
type Event interface {
	GetEventTypeName() string
}

type FetchBasketStarted struct{}

func (e FetchBasketStarted) GetEventTypeName() string { return "basket.fetch.started" }

type FetchBasketFinished struct{}

func (e FetchBasketFinished) GetEventTypeName() string { return "basket.fetch.finished" }

type BasketReceived struct {
	Basket basket.Basket
}

func (e BasketReceived) GetEventTypeName() string { return "basket.received" }

type BasketProcessing struct {
	Processing bool
}

func (e BasketProcessing) GetEventTypeName() string { return "basket.processing" }

type PaymentMethodSelected struct {
	Method basket.PaymentMethod
}

func (e PaymentMethodSelected) GetEventTypeName() string { return "payment.method.selected" }

type SubmitStarted struct{}

func (e SubmitStarted) GetEventTypeName() string { return "payment.submit.started" }

type SubmitSucceeded struct {
	RedirectURL string
}

func (e SubmitSucceeded) GetEventTypeName() string { return "payment.submit.succeeded" }

type SubmitFinished struct{}

func (e SubmitFinished) GetEventTypeName() string { return "payment.submit.finished" }

type ClientSecretProcessing struct {
	Processing bool
}

func (e ClientSecretProcessing) GetEventTypeName() string { return "clientsecret.processing" }

type ClientSecretReceived struct {
	ClientSecret basket.ClientSecret
}

func (e ClientSecretReceived) GetEventTypeName() string { return "clientsecret.received" }

type FetchClientSecretFinished struct{}

func (e FetchClientSecretFinished) GetEventTypeName() string { return "clientsecret.fetch.finished" }
