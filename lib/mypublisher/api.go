package mypublisher

import (
	"context"

	"github.com/MarcGrol/basketcheckout/lib/myevents"
)

// Publisher stores events in an outbox within the transaction of the caller and delivers them afterwards.
//go:generate mockgen -source=api.go -package mypublisher -destination publisher_mock.go Publisher
type Publisher interface {
	CreateTopic(c context.Context, topic string) error
	Publish(c context.Context, topic string, event myevents.Event) error
}
