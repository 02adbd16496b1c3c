package checkoutweb

import (
	"time"

	"github.com/MarcGrol/basketcheckout/services/checkoutevents"
	"github.com/MarcGrol/basketcheckout/services/orchestrator"
)

// SessionRecord is the persisted trail of one checkout session.
type SessionRecord struct {
	SessionUID            string
	ShopperUID            string
	CreatedAt             time.Time
	LastModified          *time.Time
	PaymentMethod         string
	Projection            string `datastore:",noindex"`
	CheckoutStatus        checkoutevents.CheckoutStatus
	CheckoutStatusDetails string
	Done                  bool
}

// TriggerResponse is returned by every endpoint that starts a workflow.
type TriggerResponse struct {
	Started    bool                    `json:"started"`
	Projection orchestrator.Projection `json:"projection"`
}
