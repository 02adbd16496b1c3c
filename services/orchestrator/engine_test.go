package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/basketcheckout/lib/mypublisher"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
	"github.com/MarcGrol/basketcheckout/services/checkoutevents"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

var (
	seatBasket = basket.Basket{
		BasketID: 1,
		Currency: "USD",
		Products: []basket.Product{
			{ID: "1", ProductType: basket.ProductTypeSeat, CourseKey: "course-v1:a", Sku: "ABC", Price: decimal.RequireFromString("49")},
		},
		OrderTotal: decimal.RequireFromString("49"),
	}
	emptyBasket = basket.Basket{BasketID: 2, Products: []basket.Product{}}
)

type secretRequiringStrategy struct {
	providers.Strategy
}

func (s secretRequiringStrategy) RequiresClientSecret() bool {
	return true
}

type recordingSink struct {
	stopped map[string]map[string]string
	cleared []string
}

func (s *recordingSink) StopSubmit(form string, fieldErrors map[string]string) {
	if s.stopped == nil {
		s.stopped = map[string]map[string]string{}
	}
	s.stopped[form] = fieldErrors
}

func (s *recordingSink) ClearSubmitErrors(form string) {
	s.cleared = append(s.cleared, form)
}

type mocks struct {
	api       *basketapi.MockAPI
	stripe    *providers.MockStrategy
	paypal    *providers.MockStrategy
	publisher *mypublisher.MockPublisher
}

func setup(t *testing.T, ctrl *gomock.Controller, options ...Option) (mocks, *Engine) {
	m := mocks{
		api:       basketapi.NewMockAPI(ctrl),
		stripe:    providers.NewMockStrategy(ctrl),
		paypal:    providers.NewMockStrategy(ctrl),
		publisher: mypublisher.NewMockPublisher(ctrl),
	}
	registry := providers.NewRegistry().
		Register(basket.PaymentMethodStripe, secretRequiringStrategy{m.stripe}).
		Register(basket.PaymentMethodPayPal, m.paypal)

	options = append([]Option{WithPublisher(m.publisher)}, options...)
	return m, New("session-1", registry, m.api, options...)
}

func loaded(t *testing.T, m mocks, sut *Engine, b basket.Basket) {
	m.api.EXPECT().GetBasket(gomock.Any()).Return(b, nil)
	assert.True(t, sut.FetchBasket(context.TODO()))
}

func alertCodes(p Projection) []string {
	codes := []string{}
	for _, a := range p.Alerts {
		codes = append(codes, a.Code)
	}
	return codes
}

func TestFetchBasket(t *testing.T) {
	t.Run("Empty basket", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).Return(emptyBasket, nil)

		// when
		started := sut.FetchBasket(context.TODO())

		// then
		assert.True(t, started)
		p := sut.Projection()
		assert.True(t, p.IsEmpty)
		assert.False(t, p.Redirect)
		assert.False(t, p.Loading)
		assert.True(t, p.Loaded)
		assert.False(t, p.IsBasketProcessing)
		assert.Equal(t, basket.OrderTypeSeat, p.OrderType)
	})

	t.Run("Basket messages replace earlier alerts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		first := seatBasket
		first.Messages = []basket.Message{{Code: "old", MessageType: basket.MessageTypeInfo}}
		second := seatBasket
		second.Messages = []basket.Message{{Code: "new", MessageType: basket.MessageTypeInfo, Data: map[string]any{"course": "a"}}}
		m.api.EXPECT().GetBasket(gomock.Any()).Return(first, nil)
		m.api.EXPECT().GetBasket(gomock.Any()).Return(second, nil)

		// when
		sut.FetchBasket(context.TODO())
		sut.FetchBasket(context.TODO())

		// then
		p := sut.Projection()
		assert.Equal(t, []string{"new"}, alertCodes(p))
		assert.Equal(t, map[string]any{"course": "a"}, p.Alerts[0].Values)
	})

	t.Run("Failure with attached basket", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).Return(basket.Basket{}, &checkouterrors.RawError{
			HTTPStatus: 400,
			Messages:   []basket.Message{{Code: "course-unavailable", MessageType: basket.MessageTypeError}},
			Basket:     &seatBasket,
		})

		// when
		sut.FetchBasket(context.TODO())

		// then
		p := sut.Projection()
		assert.Equal(t, 1, p.Basket.BasketID)
		assert.Equal(t, []string{"course-unavailable"}, alertCodes(p))
		assert.False(t, p.IsBasketProcessing)
		assert.True(t, p.Loaded)
	})

	t.Run("Transport failure shows fallback", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).Return(basket.Basket{}, fmt.Errorf("connection refused"))

		// when
		sut.FetchBasket(context.TODO())

		// then
		p := sut.Projection()
		assert.Equal(t, []string{checkouterrors.CodeFallbackError}, alertCodes(p))
		assert.True(t, p.IsEmpty)
		assert.False(t, p.Loading)
	})

	t.Run("Second fetch while in flight is dropped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).DoAndReturn(func(c context.Context) (basket.Basket, error) {
			assert.False(t, sut.FetchBasket(c))
			return seatBasket, nil
		}).Times(1)

		// when
		started := sut.FetchBasket(context.TODO())

		// then
		assert.True(t, started)
		assert.False(t, sut.State().IsBasketProcessing)
	})

	t.Run("Collaborator panic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).DoAndReturn(func(c context.Context) (basket.Basket, error) {
			panic("boom")
		})

		// when
		sut.FetchBasket(context.TODO())

		// then
		p := sut.Projection()
		assert.False(t, p.IsBasketProcessing)
		assert.True(t, p.Loaded)
		assert.Equal(t, []string{checkouterrors.CodeFallbackError}, alertCodes(p))
	})
}

func TestDiscountCheck(t *testing.T) {
	t.Run("Disabled by default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).Return(seatBasket, nil)

		// when
		sut.FetchBasket(context.TODO())

		// then
		assert.Equal(t, "", sut.State().Basket.DiscountJWT)
	})

	t.Run("Discounted basket after fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl, WithDiscountCheck(true))

		// given
		discounted := seatBasket
		discounted.OrderTotal = decimal.RequireFromString("44.1")
		discounted.Messages = []basket.Message{{Code: "discount-applied", MessageType: basket.MessageTypeSuccess}}
		fetched := seatBasket
		fetched.Messages = []basket.Message{{Code: "welcome", MessageType: basket.MessageTypeInfo}}
		m.api.EXPECT().GetBasket(gomock.Any()).Return(fetched, nil)
		m.api.EXPECT().GetDiscount(gomock.Any(), "course-v1:a").Return(basket.Discount{DiscountApplicable: true, JWT: "jwt"}, nil)
		m.api.EXPECT().GetBasketWithDiscount(gomock.Any(), "jwt").Return(discounted, nil)

		// when
		sut.FetchBasket(context.TODO())

		// then
		p := sut.Projection()
		assert.Equal(t, "jwt", p.Basket.DiscountJWT)
		assert.Equal(t, "44.1", p.Basket.OrderTotal.String())
		assert.Equal(t, []string{"welcome", "discount-applied"}, alertCodes(p))
		assert.False(t, p.IsBasketProcessing)
	})

	t.Run("Not applicable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl, WithDiscountCheck(true))

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).Return(seatBasket, nil)
		m.api.EXPECT().GetDiscount(gomock.Any(), gomock.Any()).Return(basket.Discount{}, nil)

		// when
		sut.FetchBasket(context.TODO())

		// then
		assert.Equal(t, "", sut.State().Basket.DiscountJWT)
	})

	t.Run("Only for a single seat", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl, WithDiscountCheck(true))

		// given
		bulk := seatBasket
		bulk.Products = []basket.Product{{ProductType: basket.ProductTypeEnrollmentCode}}
		m.api.EXPECT().GetBasket(gomock.Any()).Return(bulk, nil)

		// when
		sut.FetchBasket(context.TODO())

		// then
		assert.Equal(t, basket.OrderTypeBulkEnrollment, sut.Projection().OrderType)
	})

	t.Run("After failed submit with basket", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl, WithDiscountCheck(true))
		loaded(t, m, sut, emptyBasket)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{}, &checkouterrors.RawError{
			Messages: []basket.Message{{Code: checkouterrors.CodeBasketChanged, MessageType: basket.MessageTypeError}},
			Basket:   &seatBasket,
		})
		m.api.EXPECT().GetDiscount(gomock.Any(), "course-v1:a").Return(basket.Discount{DiscountApplicable: true, JWT: "jwt"}, nil)
		m.api.EXPECT().GetBasketWithDiscount(gomock.Any(), "jwt").Return(seatBasket, nil)

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		assert.Equal(t, "jwt", sut.State().Basket.DiscountJWT)
	})
}

func TestSubmitPayment(t *testing.T) {
	t.Run("Stripe succeeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			SessionUID:    "session-1",
			ProviderName:  "stripe",
			BasketID:      1,
			Amount:        "49",
			Currency:      "USD",
			PaymentMethod: "stripe",
		}).Return(nil)
		m.stripe.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), providers.CheckoutRequest{
			SessionUID:      "session-1",
			PaymentMethodID: "pm_card_visa",
		}).DoAndReturn(func(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
			s := sut.State()
			assert.True(t, s.Submitting)
			assert.True(t, s.IsBasketProcessing)
			assert.Equal(t, basket.PaymentMethodStripe, s.PaymentMethod)
			assert.Equal(t, 1, b.BasketID)
			return basket.Basket{RedirectURL: "/receipt?basket_id=1"}, nil
		})
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			SessionUID:     "session-1",
			ProviderName:   "stripe",
			BasketID:       1,
			CheckoutStatus: checkoutevents.CheckoutStatusSuccess,
		}).Return(nil)

		// when
		started, err := sut.SubmitPayment(context.TODO(), basket.PaymentMethodStripe, providers.CheckoutRequest{PaymentMethodID: "pm_card_visa"})

		// then
		assert.NoError(t, err)
		assert.True(t, started)
		p := sut.Projection()
		assert.True(t, p.Redirect)
		assert.Equal(t, "/receipt?basket_id=1", p.RedirectURL)
		assert.False(t, p.Submitting)
		assert.False(t, p.IsBasketProcessing)
		assert.Equal(t, basket.PaymentMethodUndefined, p.PaymentMethod)
	})

	t.Run("Field validation errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sink := &recordingSink{}
		m, sut := setup(t, ctrl, WithFormErrorSink(sink))
		loaded(t, m, sut, seatBasket)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.stripe.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{}, &checkouterrors.RawError{
			FieldErrors: []checkouterrors.FieldError{{FieldName: "address_line1", UserMessage: "Required"}},
		})

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodStripe, providers.CheckoutRequest{})

		// then
		p := sut.Projection()
		assert.Equal(t, map[string]string{"address": "Required"}, p.FieldErrors)
		assert.Equal(t, map[string]string{"address": "Required"}, sink.stopped["payment"])
		assert.Equal(t, []string{"payment"}, sink.cleared)
		assert.Empty(t, p.Alerts)
		assert.False(t, p.Redirect)
	})

	t.Run("Field errors and basket conflict together", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		changed := seatBasket
		changed.BasketID = 9
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{}, &checkouterrors.RawError{
			FieldErrors: []checkouterrors.FieldError{{FieldName: "postal_code", UserMessage: "Required"}},
			Messages:    []basket.Message{{Code: checkouterrors.CodeBasketChanged, MessageType: basket.MessageTypeError}},
			Basket:      &changed,
		})

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		p := sut.Projection()
		assert.Equal(t, map[string]string{"postalCode": "Required"}, p.FieldErrors)
		assert.Equal(t, []string{checkouterrors.CodeBasketChanged}, alertCodes(p))
		assert.Equal(t, 9, p.Basket.BasketID)
	})

	t.Run("Basket changed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		changed := seatBasket
		changed.BasketID = 7
		changed.OrderTotal = decimal.RequireFromString("59")
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{}, &checkouterrors.RawError{
			HTTPStatus: 409,
			Messages:   []basket.Message{{Code: checkouterrors.CodeBasketChanged, MessageType: basket.MessageTypeError}},
			Basket:     &changed,
		})

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		p := sut.Projection()
		assert.Equal(t, 7, p.Basket.BasketID)
		assert.Equal(t, "59", p.Basket.OrderTotal.String())
		assert.Contains(t, alertCodes(p), checkouterrors.CodeBasketChanged)
		assert.False(t, p.Redirect)
		assert.False(t, p.Submitting)
	})

	t.Run("Aborted leaves no trace", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		changed := seatBasket
		changed.BasketID = 7
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any())
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), checkoutevents.CheckoutCompleted{
			SessionUID:            "session-1",
			ProviderName:          "paypal",
			BasketID:              1,
			CheckoutStatus:        checkoutevents.CheckoutStatusCancelled,
			CheckoutStatusDetails: string(checkouterrors.KindAborted),
		})
		raw := checkouterrors.NewAborted(context.Canceled)
		raw.Basket = &changed
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{}, raw)

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		p := sut.Projection()
		assert.Empty(t, p.Alerts)
		assert.Empty(t, p.FieldErrors)
		assert.Equal(t, 1, p.Basket.BasketID)
		assert.False(t, p.IsBasketProcessing)
		assert.False(t, p.Submitting)
	})

	t.Run("Provider failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(basket.Basket{}, checkouterrors.NewProviderFailure("apple-pay-merchant-validation-failure", "", nil))

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		assert.Equal(t, []string{"apple-pay-merchant-validation-failure"}, alertCodes(sut.Projection()))
	})

	t.Run("Previous alerts cleared on submit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		withMessage := seatBasket
		withMessage.Messages = []basket.Message{{Code: "welcome"}}
		loaded(t, m, sut, withMessage)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
				assert.Empty(t, sut.Projection().Alerts)
				return basket.Basket{}, nil
			})

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		assert.True(t, sut.Projection().Redirect)
	})

	t.Run("Strategy panic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
				panic("sdk crashed")
			})

		// when
		started, err := sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		assert.True(t, started)
		assert.NoError(t, err)
		p := sut.Projection()
		assert.False(t, p.IsBasketProcessing)
		assert.False(t, p.Submitting)
		assert.Equal(t, []string{checkouterrors.CodeFallbackError}, alertCodes(p))
	})

	t.Run("Unknown payment method", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, sut := setup(t, ctrl)
		before := sut.State()

		// when
		started, err := sut.SubmitPayment(context.TODO(), basket.PaymentMethodCybersource, providers.CheckoutRequest{})

		// then
		assert.False(t, started)
		assert.ErrorIs(t, err, providers.ErrUnknownPaymentMethod)
		assert.Equal(t, before, sut.State())
		assert.Empty(t, sut.Projection().Alerts)
	})

	t.Run("Publish failure does not matter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("outbox down")).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{RedirectURL: "/receipt"}, nil)

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		assert.True(t, sut.Projection().Redirect)
		assert.Empty(t, sut.Projection().Alerts)
	})

	t.Run("Second submit after success is dropped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).Return(basket.Basket{RedirectURL: "/receipt"}, nil).Times(1)
		started, err := sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})
		assert.NoError(t, err)
		assert.True(t, started)

		// when
		started, err = sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		assert.NoError(t, err)
		assert.False(t, started)
		assert.True(t, sut.Projection().Redirect)
		assert.Equal(t, "/receipt", sut.Projection().RedirectURL)
	})

	t.Run("Client secret is passed along", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)
		m.api.EXPECT().GetClientSecret(gomock.Any()).Return(basket.ClientSecret{CaptureContext: &basket.CaptureContext{KeyID: "pi_1_secret_x"}}, nil)
		sut.FetchClientSecret(context.TODO())

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.stripe.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), providers.CheckoutRequest{
			SessionUID:     "session-1",
			ClientSecretID: "pi_1_secret_x",
		}).Return(basket.Basket{}, nil)

		// when
		sut.SubmitPayment(context.TODO(), basket.PaymentMethodStripe, providers.CheckoutRequest{})

		// then
		assert.True(t, sut.Projection().Redirect)
	})
}

func TestSingleFlight(t *testing.T) {
	t.Run("Concurrent submits invoke the provider once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		entered := make(chan struct{})
		release := make(chan struct{})
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
				close(entered)
				<-release
				return basket.Basket{}, nil
			}).Times(1)

		// when
		done := make(chan bool)
		go func() {
			started, _ := sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})
			done <- started
		}()
		<-entered

		var wg sync.WaitGroup
		dropped := make(chan bool, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				started, _ := sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})
				dropped <- !started
			}()
		}
		wg.Wait()
		close(dropped)
		close(release)

		// then
		assert.True(t, <-done)
		for d := range dropped {
			assert.True(t, d)
		}
		assert.False(t, sut.State().IsBasketProcessing)
	})

	t.Run("Fetch is dropped during submit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.paypal.EXPECT().AttemptCheckout(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, b basket.Basket, req providers.CheckoutRequest) (basket.Basket, error) {
				assert.False(t, sut.FetchBasket(c))
				assert.False(t, sut.AddCoupon(c, "SAVE10"))
				return basket.Basket{}, nil
			})

		// when
		started, _ := sut.SubmitPayment(context.TODO(), basket.PaymentMethodPayPal, providers.CheckoutRequest{})

		// then
		assert.True(t, started)
	})

	t.Run("Client secret runs next to basket fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).DoAndReturn(func(c context.Context) (basket.Basket, error) {
			assert.True(t, sut.FetchClientSecret(c))
			return seatBasket, nil
		})
		m.api.EXPECT().GetClientSecret(gomock.Any()).DoAndReturn(func(c context.Context) (basket.ClientSecret, error) {
			assert.False(t, sut.FetchClientSecret(c))
			return basket.ClientSecret{CaptureContext: &basket.CaptureContext{KeyID: "key-1"}}, nil
		})

		// when
		sut.FetchBasket(context.TODO())

		// then
		p := sut.Projection()
		assert.Equal(t, "key-1", p.ClientSecretID)
		assert.False(t, p.IsClientSecretProcessing)
		assert.False(t, p.IsBasketProcessing)
	})
}

func TestClientSecret(t *testing.T) {
	t.Run("Payment form waits for the secret", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// then
		assert.False(t, sut.ShowPaymentForm(basket.PaymentMethodPayPal))

		// given
		loaded(t, m, sut, seatBasket)

		// then
		assert.True(t, sut.ShowPaymentForm(basket.PaymentMethodPayPal))
		assert.False(t, sut.ShowPaymentForm(basket.PaymentMethodStripe))

		// given
		m.api.EXPECT().GetClientSecret(gomock.Any()).Return(basket.ClientSecret{CaptureContext: &basket.CaptureContext{KeyID: "key-1"}}, nil)

		// when
		sut.FetchClientSecret(context.TODO())

		// then
		p := sut.Projection()
		assert.True(t, p.ShowPaymentForm[basket.PaymentMethodStripe])
		assert.True(t, p.ShowPaymentForm[basket.PaymentMethodPayPal])
		assert.True(t, sut.State().ClientSecretLoaded)
	})

	t.Run("Failure keeps form loading", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.api.EXPECT().GetClientSecret(gomock.Any()).Return(basket.ClientSecret{}, &checkouterrors.RawError{HTTPStatus: 500})

		// when
		sut.FetchClientSecret(context.TODO())

		// then
		p := sut.Projection()
		assert.False(t, p.ShowPaymentForm[basket.PaymentMethodStripe])
		assert.False(t, p.IsClientSecretProcessing)
		assert.Equal(t, []string{checkouterrors.CodeFallbackError}, alertCodes(p))
	})

	t.Run("Failure leaves basket and payment form alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		otherBasket := basket.Basket{BasketID: seatBasket.BasketID + 1, Products: []basket.Product{}}
		m.api.EXPECT().GetClientSecret(gomock.Any()).Return(basket.ClientSecret{}, &checkouterrors.RawError{
			HTTPStatus:  400,
			FieldErrors: []checkouterrors.FieldError{{FieldName: "address_line1", UserMessage: "Required"}},
			Messages:    []basket.Message{{Code: "capture-context-unavailable", MessageType: basket.MessageTypeError}},
			Basket:      &otherBasket,
		})

		// when
		sut.FetchClientSecret(context.TODO())

		// then
		p := sut.Projection()
		assert.Equal(t, seatBasket.BasketID, p.Basket.BasketID)
		assert.False(t, p.IsEmpty)
		assert.Empty(t, p.FieldErrors)
		assert.Equal(t, []string{"capture-context-unavailable"}, alertCodes(p))
	})

	t.Run("Failure replaces earlier alerts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.api.EXPECT().GetClientSecret(gomock.Any()).Return(basket.ClientSecret{}, &checkouterrors.RawError{HTTPStatus: 500})
		sut.FetchClientSecret(context.TODO())
		m.api.EXPECT().GetClientSecret(gomock.Any()).Return(basket.ClientSecret{}, &checkouterrors.RawError{
			HTTPStatus: 503,
			Messages:   []basket.Message{{Code: "capture-context-unavailable", MessageType: basket.MessageTypeError}},
		})

		// when
		sut.FetchClientSecret(context.TODO())

		// then
		assert.Equal(t, []string{"capture-context-unavailable"}, alertCodes(sut.Projection()))
	})
}

func TestMount(t *testing.T) {
	t.Run("Both domains loaded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).Return(seatBasket, nil)
		m.api.EXPECT().GetClientSecret(gomock.Any()).Return(basket.ClientSecret{CaptureContext: &basket.CaptureContext{KeyID: "key-1"}}, nil)

		// when
		sut.Mount(context.TODO())

		// then
		p := sut.Projection()
		assert.True(t, p.Loaded)
		assert.Equal(t, "key-1", p.ClientSecretID)
	})

	t.Run("Failures end up in the projection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)

		// given
		m.api.EXPECT().GetBasket(gomock.Any()).Return(basket.Basket{}, fmt.Errorf("connection refused"))
		m.api.EXPECT().GetClientSecret(gomock.Any()).Return(basket.ClientSecret{}, fmt.Errorf("connection refused"))

		// when
		sut.Mount(context.TODO())

		// then
		p := sut.Projection()
		assert.True(t, p.Loaded)
		assert.False(t, p.Loading)
		assert.False(t, p.IsClientSecretProcessing)
		assert.Equal(t, []string{checkouterrors.CodeFallbackError}, alertCodes(p))
	})
}

func TestBasketOperations(t *testing.T) {
	t.Run("Invalid coupon", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		m.api.EXPECT().AddCoupon(gomock.Any(), "INVALID").Return(basket.Basket{}, &checkouterrors.RawError{
			HTTPStatus: 400,
			Messages:   []basket.Message{{Code: "code-does-not-exist", MessageType: basket.MessageTypeError}},
			Basket:     &seatBasket,
		})

		// when
		started := sut.AddCoupon(context.TODO(), "INVALID")

		// then
		assert.True(t, started)
		p := sut.Projection()
		assert.Equal(t, []string{"code-does-not-exist"}, alertCodes(p))
		assert.False(t, p.IsBasketProcessing)
	})

	t.Run("Quantity update", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		m, sut := setup(t, ctrl)
		loaded(t, m, sut, seatBasket)

		// given
		bulk := seatBasket
		bulk.Products = []basket.Product{{ProductType: basket.ProductTypeEnrollmentCode, Sku: "ABC"}}
		m.api.EXPECT().UpdateQuantity(gomock.Any(), "ABC", 3).Return(bulk, nil)

		// when
		sut.UpdateQuantity(context.TODO(), "ABC", 3)

		// then
		assert.Equal(t, basket.OrderTypeBulkEnrollment, sut.Projection().OrderType)
	})
}
