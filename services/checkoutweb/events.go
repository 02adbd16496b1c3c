package checkoutweb

import (
	"context"
	"fmt"

	"github.com/MarcGrol/basketcheckout/lib/myerrors"
	"github.com/MarcGrol/basketcheckout/lib/myhttp"
	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/checkoutevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.publisher.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, checkoutevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/checkout/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	s.logger.Log(c, event.SessionUID, mylog.SeverityInfo, "Event: checkout of basket %d started with %s (%s %s)", event.BasketID, event.PaymentMethod, event.Amount, event.Currency)

	return s.updateSession(c, event.SessionUID, func(record *SessionRecord) {
		record.PaymentMethod = event.PaymentMethod
	})
}

func (s *service) OnCheckoutCompleted(c context.Context, topic string, event checkoutevents.CheckoutCompleted) error {
	s.logger.Log(c, event.SessionUID, mylog.SeverityInfo, "Event: checkout of basket %d completed with %s -> %s", event.BasketID, event.ProviderName, event.CheckoutStatus)

	return s.updateSession(c, event.SessionUID, func(record *SessionRecord) {
		record.CheckoutStatus = event.CheckoutStatus
		record.CheckoutStatusDetails = event.CheckoutStatusDetails
		record.Done = record.Done || event.CheckoutStatus == checkoutevents.CheckoutStatusSuccess
	})
}

func (s *service) updateSession(c context.Context, sessionUID string, update func(record *SessionRecord)) error {
	now := s.nower.Now()

	return s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		record, found, err := s.sessionStore.Get(c, sessionUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout session with uid %s not found", sessionUID))
		}

		if record.CheckoutStatus == checkoutevents.CheckoutStatusSuccess {
			return nil
		}

		update(&record)
		record.LastModified = &now

		err = s.sessionStore.Put(c, sessionUID, record)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		return nil
	})
}
