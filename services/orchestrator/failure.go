package orchestrator

import (
	"context"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/alerts"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/checkoutstate"
)

// handleFailure projects a classified failure: messages to the alerts, field errors to the
// payment form and an attached basket to the store. An aborted attempt leaves no trace.
func (e *Engine) handleFailure(c context.Context, operation string, err error, clearAlerts bool) checkouterrors.Envelope {
	envelope := checkouterrors.Classify(err)
	if envelope.Silent() {
		e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "%s aborted: %s", operation, err)
		return envelope
	}

	e.logger.Log(c, e.sessionUID, mylog.SeverityWarn, "%s failed (%s): %s", operation, envelope.Kind, err)

	e.alerts.Handle(envelope.Messages, clearAlerts)

	if envelope.Kind == checkouterrors.KindFieldValidation {
		for _, sink := range e.formSinks {
			sink.StopSubmit(alerts.PaymentForm, envelope.FieldErrors)
		}
	}

	if envelope.AttachedBasket != nil {
		e.store.Dispatch(checkoutstate.BasketReceived{Basket: *envelope.AttachedBasket})
	}

	return envelope
}

// handleClientSecretFailure only shows the messages of a failure. The basket and the payment form
// belong to the basket workflows and are left alone.
func (e *Engine) handleClientSecretFailure(c context.Context, err error) checkouterrors.Envelope {
	envelope := checkouterrors.Classify(err)
	if envelope.Silent() {
		e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Fetch client secret aborted: %s", err)
		return envelope
	}

	e.logger.Log(c, e.sessionUID, mylog.SeverityWarn, "Fetch client secret failed (%s): %s", envelope.Kind, err)

	e.alerts.Handle(envelope.Messages, true)

	return envelope
}

func (e *Engine) receiveBasket(b basket.Basket, clearAlerts bool) {
	e.store.Dispatch(checkoutstate.BasketReceived{Basket: b})
	e.alerts.Handle(b.Messages, clearAlerts)
}

// checkDiscount re-fetches a single seat basket with a discount token when the course has a discount.
// It runs within the basket guard of its caller.
func (e *Engine) checkDiscount(c context.Context) {
	if !e.discountCheck {
		return
	}

	product, ok := e.store.State().Basket.SingleSeat()
	if !ok {
		return
	}

	discount, err := attempt(func() (basket.Discount, error) {
		return e.api.GetDiscount(c, product.CourseKey)
	})
	if err != nil {
		e.handleFailure(c, "Discount check", err, false)
		return
	}
	if !discount.DiscountApplicable {
		return
	}

	e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Discount applicable for %s", product.CourseKey)

	discounted, err := attempt(func() (basket.Basket, error) {
		return e.api.GetBasketWithDiscount(c, discount.JWT)
	})
	if err != nil {
		e.handleFailure(c, "Discounted basket fetch", err, false)
		return
	}
	discounted.DiscountJWT = discount.JWT

	e.receiveBasket(discounted, false)
}
