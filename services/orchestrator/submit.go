package orchestrator

import (
	"context"

	"github.com/MarcGrol/basketcheckout/lib/myevents"
	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/alerts"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/checkoutevents"
	"github.com/MarcGrol/basketcheckout/services/checkoutstate"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

// SubmitPayment hands the basket to the strategy registered for method. It returns false when another
// basket workflow is in flight. An unregistered method is reported as error and changes nothing.
func (e *Engine) SubmitPayment(c context.Context, method basket.PaymentMethod, req providers.CheckoutRequest) (bool, error) {
	strategy, err := e.registry.Resolve(method)
	if err != nil {
		e.logger.Log(c, e.sessionUID, mylog.SeverityError, "Submit payment rejected: %s", err)
		return false, err
	}

	state, started := e.store.DispatchIf(submitAllowed,
		checkoutstate.BasketProcessing{Processing: true},
		checkoutstate.PaymentMethodSelected{Method: method},
		checkoutstate.SubmitStarted{})
	if !started {
		e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Submit payment with %s dropped: basket is being processed or already paid", method)
		return false, nil
	}
	defer e.store.Dispatch(
		checkoutstate.BasketProcessing{Processing: false},
		checkoutstate.SubmitFinished{})

	e.alerts.Clear()
	for _, sink := range e.formSinks {
		sink.ClearSubmitErrors(alerts.PaymentForm)
	}

	req.SessionUID = e.sessionUID
	if req.ClientSecretID == "" {
		req.ClientSecretID = state.ClientSecret.ID()
	}

	e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Submit payment of basket %d with %s", state.Basket.BasketID, method)
	e.publish(c, checkoutevents.CheckoutStarted{
		SessionUID:    e.sessionUID,
		ProviderName:  method.String(),
		BasketID:      state.Basket.BasketID,
		Amount:        state.Basket.OrderTotal.String(),
		Currency:      state.Basket.Currency,
		PaymentMethod: method.String(),
	})

	result, err := attempt(func() (basket.Basket, error) {
		return strategy.AttemptCheckout(c, state.Basket, req)
	})
	if err != nil {
		envelope := e.handleFailure(c, "Submit payment", err, false)
		if envelope.AttachedBasket != nil && !envelope.Silent() {
			e.checkDiscount(c)
		}
		e.publish(c, checkoutevents.CheckoutCompleted{
			SessionUID:            e.sessionUID,
			ProviderName:          method.String(),
			BasketID:              state.Basket.BasketID,
			CheckoutStatus:        checkoutStatusOf(envelope.Kind),
			CheckoutStatusDetails: string(envelope.Kind),
		})
		return true, nil
	}

	e.store.Dispatch(checkoutstate.SubmitSucceeded{RedirectURL: result.RedirectURL})
	e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Payment of basket %d submitted, redirect to %s", state.Basket.BasketID, result.RedirectURL)
	e.publish(c, checkoutevents.CheckoutCompleted{
		SessionUID:     e.sessionUID,
		ProviderName:   method.String(),
		BasketID:       state.Basket.BasketID,
		CheckoutStatus: checkoutevents.CheckoutStatusSuccess,
	})

	return true, nil
}

func checkoutStatusOf(kind checkouterrors.Kind) checkoutevents.CheckoutStatus {
	switch kind {
	case checkouterrors.KindAborted:
		return checkoutevents.CheckoutStatusCancelled
	case checkouterrors.KindUnknown:
		return checkoutevents.CheckoutStatusError
	default:
		return checkoutevents.CheckoutStatusFailed
	}
}

// publish never influences the workflow: a failure is only logged.
func (e *Engine) publish(c context.Context, event myevents.Event) {
	if e.publisher == nil {
		return
	}
	err := e.publisher.Publish(c, checkoutevents.TopicName, event)
	if err != nil {
		e.logger.Log(c, e.sessionUID, mylog.SeverityError, "Error publishing %s: %s", event.GetEventTypeName(), err)
	}
}
