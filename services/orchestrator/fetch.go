package orchestrator

import (
	"context"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkoutstate"
)

// FetchBasket loads the basket. It returns false when another basket workflow is in flight.
func (e *Engine) FetchBasket(c context.Context) bool {
	_, started := e.store.DispatchIf(basketIdle,
		checkoutstate.FetchBasketStarted{},
		checkoutstate.BasketProcessing{Processing: true})
	if !started {
		e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Fetch basket dropped: basket is being processed")
		return false
	}
	defer e.store.Dispatch(
		checkoutstate.BasketProcessing{Processing: false},
		checkoutstate.FetchBasketFinished{})

	e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Fetch basket")

	b, err := attempt(func() (basket.Basket, error) {
		return e.api.GetBasket(c)
	})
	if err != nil {
		e.handleFailure(c, "Fetch basket", err, true)
		return true
	}

	e.receiveBasket(b, true)
	e.checkDiscount(c)

	return true
}

func (e *Engine) AddCoupon(c context.Context, code string) bool {
	return e.runBasketOperation(c, "Add coupon", func(c context.Context) (basket.Basket, error) {
		return e.api.AddCoupon(c, code)
	})
}

func (e *Engine) UpdateQuantity(c context.Context, sku string, quantity int) bool {
	return e.runBasketOperation(c, "Update quantity", func(c context.Context) (basket.Basket, error) {
		return e.api.UpdateQuantity(c, sku, quantity)
	})
}

// runBasketOperation runs a basket mutating backend call under the basket guard.
func (e *Engine) runBasketOperation(c context.Context, operation string, op func(c context.Context) (basket.Basket, error)) bool {
	_, started := e.store.DispatchIf(basketIdle, checkoutstate.BasketProcessing{Processing: true})
	if !started {
		e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "%s dropped: basket is being processed", operation)
		return false
	}
	defer e.store.Dispatch(checkoutstate.BasketProcessing{Processing: false})

	e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "%s", operation)

	b, err := attempt(func() (basket.Basket, error) {
		return op(c)
	})
	if err != nil {
		e.handleFailure(c, operation, err, true)
		return true
	}

	e.receiveBasket(b, true)

	return true
}
