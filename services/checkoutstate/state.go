package checkoutstate

import "github.com/MarcGrol/basketcheckout/services/basket"

type State struct {
	Loading            bool
	Loaded             bool
	Submitting         bool
	IsBasketProcessing bool
	Redirect           bool
	RedirectURL        string
	PaymentMethod      basket.PaymentMethod
	Basket             basket.Basket

	ClientSecret             basket.ClientSecret
	IsClientSecretProcessing bool
	ClientSecretLoaded       bool
}

// Initial is the state on page mount: an empty basket that is still loading.
func Initial() State {
	return State{
		Loading: true,
		Basket:  basket.Basket{Products: []basket.Product{}, OrderType: basket.OrderTypeSeat},
	}
}

// Reduce is pure: it performs no I/O and never mutates its input.
func Reduce(s State, event Event) State {
	switch e := event.(type) {
	case FetchBasketStarted:
		s.Loading = true
	case FetchBasketFinished:
		s.Loading = false
		s.Loaded = true
	case BasketReceived:
		s.Basket = e.Basket.Normalized()
	case BasketProcessing:
		s.IsBasketProcessing = e.Processing
	case PaymentMethodSelected:
		s.PaymentMethod = e.Method
	case SubmitStarted:
		s.Submitting = true
	case SubmitSucceeded:
		s.Redirect = true
		s.RedirectURL = e.RedirectURL
	case SubmitFinished:
		s.Submitting = false
		s.PaymentMethod = basket.PaymentMethodUndefined
	case ClientSecretProcessing:
		s.IsClientSecretProcessing = e.Processing
	case ClientSecretReceived:
		s.ClientSecret = cloneClientSecret(e.ClientSecret)
	case FetchClientSecretFinished:
		s.ClientSecretLoaded = true
	}
	return s
}

func (s State) clone() State {
	s.Basket = s.Basket.Normalized()
	s.ClientSecret = cloneClientSecret(s.ClientSecret)
	return s
}

func cloneClientSecret(cs basket.ClientSecret) basket.ClientSecret {
	if cs.CaptureContext == nil {
		return cs
	}
	cc := *cs.CaptureContext
	return basket.ClientSecret{CaptureContext: &cc}
}
