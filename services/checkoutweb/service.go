package checkoutweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MarcGrol/basketcheckout/lib/myerrors"
	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/lib/mypublisher"
	"github.com/MarcGrol/basketcheckout/lib/mypubsub"
	"github.com/MarcGrol/basketcheckout/lib/mystore"
	"github.com/MarcGrol/basketcheckout/lib/mytime"
	"github.com/MarcGrol/basketcheckout/lib/myuuid"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/orchestrator"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

// Backend hands out the basket API on behalf of one shopper.
type Backend interface {
	ForShopper(shopperUID string) basketapi.API
}

// RegistryFactory builds the provider strategies for one shopper.
type RegistryFactory func(api basketapi.API) *providers.Registry

type service struct {
	sessionStore    mystore.Store[SessionRecord]
	backend         Backend
	registryFactory RegistryFactory
	engineOptions   []orchestrator.Option
	pubsub          mypubsub.PubSub
	publisher       mypublisher.Publisher
	nower           mytime.Nower
	uuider          myuuid.UUIDer
	logger          mylog.Logger

	sync.Mutex
	engines map[string]*orchestrator.Engine
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(store mystore.Store[SessionRecord], backend Backend, registryFactory RegistryFactory, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger, pubsub mypubsub.PubSub, pub mypublisher.Publisher, engineOptions ...orchestrator.Option) *service {
	return &service{
		sessionStore:    store,
		backend:         backend,
		registryFactory: registryFactory,
		engineOptions:   engineOptions,
		pubsub:          pubsub,
		publisher:       pub,
		nower:           nower,
		uuider:          uuider,
		logger:          logger,
		engines:         map[string]*orchestrator.Engine{},
	}
}

func (s *service) newEngine(sessionUID string, shopperUID string) *orchestrator.Engine {
	api := s.backend.ForShopper(shopperUID)
	options := append([]orchestrator.Option{orchestrator.WithPublisher(s.publisher)}, s.engineOptions...)
	return orchestrator.New(sessionUID, s.registryFactory(api), api, options...)
}

func (s *service) createSession(c context.Context, shopperUID string) (SessionRecord, error) {
	if shopperUID == "" {
		return SessionRecord{}, myerrors.NewInvalidInputErrorf("missing shopperUID")
	}

	sessionUID := s.uuider.Create()
	now := s.nower.Now()

	engine := s.newEngine(sessionUID, shopperUID)
	engine.Mount(c)

	record := SessionRecord{
		SessionUID:   sessionUID,
		ShopperUID:   shopperUID,
		CreatedAt:    now,
		LastModified: &now,
	}
	projection, err := marshalProjection(engine.Projection())
	if err != nil {
		return SessionRecord{}, err
	}
	record.Projection = projection

	err = s.sessionStore.Put(c, sessionUID, record)
	if err != nil {
		return SessionRecord{}, myerrors.NewInternalError(err)
	}

	s.Lock()
	s.engines[sessionUID] = engine
	s.Unlock()

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Checkout session %s created for shopper %s", sessionUID, shopperUID)

	return record, nil
}

func (s *service) liveEngine(sessionUID string) (*orchestrator.Engine, bool) {
	s.Lock()
	defer s.Unlock()
	engine, found := s.engines[sessionUID]
	return engine, found
}

func (s *service) dropEngine(c context.Context, sessionUID string) {
	s.Lock()
	delete(s.engines, sessionUID)
	s.Unlock()

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Checkout session %s done: engine released", sessionUID)
}

// engine returns the live engine of a session. A session that outlived its engine, e.g. after a
// restart, gets a fresh one that reloads the basket. A paid session has no engine anymore.
func (s *service) engine(c context.Context, sessionUID string) (*orchestrator.Engine, error) {
	engine, found := s.liveEngine(sessionUID)
	if found {
		return engine, nil
	}

	record, err := s.getSession(c, sessionUID)
	if err != nil {
		return nil, err
	}
	if record.Done {
		return nil, myerrors.NewConflictError(fmt.Errorf("checkout session with uid %s is already paid", sessionUID))
	}

	s.Lock()
	engine, found = s.engines[sessionUID]
	if !found {
		engine = s.newEngine(sessionUID, record.ShopperUID)
		s.engines[sessionUID] = engine
	}
	s.Unlock()

	if !found {
		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Checkout session %s revived", sessionUID)
		engine.Mount(c)
	}

	return engine, nil
}

// getProjection serves a paid session from its last persisted projection.
func (s *service) getProjection(c context.Context, sessionUID string) (orchestrator.Projection, error) {
	engine, found := s.liveEngine(sessionUID)
	if found {
		return engine.Projection(), nil
	}

	record, err := s.getSession(c, sessionUID)
	if err != nil {
		return orchestrator.Projection{}, err
	}
	if record.Done {
		return unmarshalProjection(record.Projection)
	}

	engine, err = s.engine(c, sessionUID)
	if err != nil {
		return orchestrator.Projection{}, err
	}
	return engine.Projection(), nil
}

func (s *service) getSession(c context.Context, sessionUID string) (SessionRecord, error) {
	record, found, err := s.sessionStore.Get(c, sessionUID)
	if err != nil {
		return SessionRecord{}, myerrors.NewInternalError(err)
	}
	if !found {
		return SessionRecord{}, myerrors.NewNotFoundError(fmt.Errorf("checkout session with uid %s not found", sessionUID))
	}
	return record, nil
}

func (s *service) fetchBasket(c context.Context, sessionUID string) (TriggerResponse, error) {
	return s.trigger(c, sessionUID, func(engine *orchestrator.Engine) (bool, error) {
		return engine.FetchBasket(c), nil
	})
}

func (s *service) fetchClientSecret(c context.Context, sessionUID string) (TriggerResponse, error) {
	return s.trigger(c, sessionUID, func(engine *orchestrator.Engine) (bool, error) {
		return engine.FetchClientSecret(c), nil
	})
}

func (s *service) addCoupon(c context.Context, sessionUID string, code string) (TriggerResponse, error) {
	if code == "" {
		return TriggerResponse{}, myerrors.NewInvalidInputErrorf("missing code")
	}
	return s.trigger(c, sessionUID, func(engine *orchestrator.Engine) (bool, error) {
		return engine.AddCoupon(c, code), nil
	})
}

func (s *service) updateQuantity(c context.Context, sessionUID string, sku string, quantity int) (TriggerResponse, error) {
	if sku == "" {
		return TriggerResponse{}, myerrors.NewInvalidInputErrorf("missing sku")
	}
	if quantity < 1 {
		return TriggerResponse{}, myerrors.NewInvalidInputErrorf("invalid quantity %d", quantity)
	}
	return s.trigger(c, sessionUID, func(engine *orchestrator.Engine) (bool, error) {
		return engine.UpdateQuantity(c, sku, quantity), nil
	})
}

func (s *service) submitPayment(c context.Context, sessionUID string, method basket.PaymentMethod, req providers.CheckoutRequest) (TriggerResponse, error) {
	resp, err := s.trigger(c, sessionUID, func(engine *orchestrator.Engine) (bool, error) {
		started, err := engine.SubmitPayment(c, method, req)
		if errors.Is(err, providers.ErrUnknownPaymentMethod) {
			return false, myerrors.NewInvalidInputError(err)
		}
		return started, err
	}, func(record *SessionRecord) {
		record.PaymentMethod = method.String()
	})
	if err != nil {
		return TriggerResponse{}, err
	}

	if resp.Started && resp.Projection.Redirect {
		s.dropEngine(c, sessionUID)
	}

	return resp, nil
}

func (s *service) trigger(c context.Context, sessionUID string, f func(engine *orchestrator.Engine) (bool, error), updates ...func(record *SessionRecord)) (TriggerResponse, error) {
	engine, err := s.engine(c, sessionUID)
	if err != nil {
		return TriggerResponse{}, err
	}

	started, err := f(engine)
	if err != nil {
		return TriggerResponse{}, err
	}

	projection := engine.Projection()
	if started {
		err = s.saveProjection(c, sessionUID, projection, updates...)
		if err != nil {
			return TriggerResponse{}, err
		}
	}

	return TriggerResponse{
		Started:    started,
		Projection: projection,
	}, nil
}

func (s *service) saveProjection(c context.Context, sessionUID string, projection orchestrator.Projection, updates ...func(record *SessionRecord)) error {
	marshalled, err := marshalProjection(projection)
	if err != nil {
		return err
	}

	now := s.nower.Now()

	return s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		record, found, err := s.sessionStore.Get(c, sessionUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout session with uid %s not found", sessionUID))
		}

		record.Projection = marshalled
		record.Done = record.Done || projection.Redirect
		for _, update := range updates {
			update(&record)
		}
		record.LastModified = &now

		err = s.sessionStore.Put(c, sessionUID, record)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		return nil
	})
}

func unmarshalProjection(marshalled string) (orchestrator.Projection, error) {
	projection := orchestrator.Projection{}
	err := json.Unmarshal([]byte(marshalled), &projection)
	if err != nil {
		return projection, myerrors.NewInternalError(fmt.Errorf("error unmarshalling projection: %s", err))
	}
	return projection, nil
}

func marshalProjection(projection orchestrator.Projection) (string, error) {
	marshalled, err := json.Marshal(projection)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error marshalling projection: %s", err))
	}
	return string(marshalled), nil
}
