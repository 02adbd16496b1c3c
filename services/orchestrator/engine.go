package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/lib/mypublisher"
	"github.com/MarcGrol/basketcheckout/services/alerts"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkoutstate"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

// FormErrorSink receives field validation errors for a form.
type FormErrorSink interface {
	StopSubmit(form string, fieldErrors map[string]string)
	ClearSubmitErrors(form string)
}

type Option func(e *Engine)

// WithDiscountCheck enables the discount re-fetch after a fetch and after a failed submit.
func WithDiscountCheck(enabled bool) Option {
	return func(e *Engine) {
		e.discountCheck = enabled
	}
}

// WithFormErrorSink adds a sink next to the form errors kept for the projection.
func WithFormErrorSink(sink FormErrorSink) Option {
	return func(e *Engine) {
		e.formSinks = append(e.formSinks, sink)
	}
}

func WithPublisher(publisher mypublisher.Publisher) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

func WithInitialState(state checkoutstate.State) Option {
	return func(e *Engine) {
		e.store = checkoutstate.NewStore(state)
	}
}

// Engine drives the workflows of one checkout session. The basket workflows (fetch, submit and
// basket operations) share one single-flight guard; the client secret workflow has its own.
type Engine struct {
	sessionUID    string
	store         *checkoutstate.Store
	alerts        *alerts.Box
	formErrors    *alerts.FormErrors
	formSinks     []FormErrorSink
	registry      *providers.Registry
	api           basketapi.API
	publisher     mypublisher.Publisher
	discountCheck bool
	logger        mylog.Logger
}

func New(sessionUID string, registry *providers.Registry, api basketapi.API, options ...Option) *Engine {
	formErrors := alerts.NewFormErrors()
	e := &Engine{
		sessionUID: sessionUID,
		store:      checkoutstate.NewStore(checkoutstate.Initial()),
		alerts:     alerts.NewBox(),
		formErrors: formErrors,
		formSinks:  []FormErrorSink{formErrors},
		registry:   registry,
		api:        api,
		logger:     mylog.New("orchestrator"),
	}
	for _, option := range options {
		option(e)
	}

	e.store.Observe(func(event checkoutstate.Event, next checkoutstate.State) {
		e.logger.Log(context.Background(), e.sessionUID, mylog.SeverityDebug, "Applied %s", event.GetEventTypeName())
	})

	return e
}

func (e *Engine) SessionUID() string {
	return e.sessionUID
}

func (e *Engine) State() checkoutstate.State {
	return e.store.State()
}

// Mount loads the basket and, when a registered provider needs one, the client secret. Both
// domains are independent and are loaded concurrently. Mount cannot fail: the workflows report
// their failures through the projection.
func (e *Engine) Mount(c context.Context) {
	g := errgroup.Group{}

	g.Go(func() error {
		e.FetchBasket(c)
		return nil
	})

	if e.needsClientSecret() {
		g.Go(func() error {
			e.FetchClientSecret(c)
			return nil
		})
	}

	_ = g.Wait()
}

func (e *Engine) needsClientSecret() bool {
	for _, method := range e.registry.Methods() {
		if e.registry.RequiresClientSecret(method) {
			return true
		}
	}
	return false
}

func basketIdle(s checkoutstate.State) bool {
	return !s.IsBasketProcessing
}

// submitAllowed also refuses once a submission has succeeded: paying is terminal.
func submitAllowed(s checkoutstate.State) bool {
	return basketIdle(s) && !s.Redirect
}

func clientSecretIdle(s checkoutstate.State) bool {
	return !s.IsClientSecretProcessing
}

// attempt converts a panicking collaborator into an ordinary error.
func attempt[T any](f func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v", r)
		}
	}()
	return f()
}
