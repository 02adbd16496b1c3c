package orchestrator

import (
	"context"

	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkoutstate"
)

// FetchClientSecret loads the client secret a card form needs. It has its own guard and may run
// next to any basket workflow.
func (e *Engine) FetchClientSecret(c context.Context) bool {
	_, started := e.store.DispatchIf(clientSecretIdle, checkoutstate.ClientSecretProcessing{Processing: true})
	if !started {
		e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Fetch client secret dropped: already in flight")
		return false
	}
	defer e.store.Dispatch(
		checkoutstate.ClientSecretProcessing{Processing: false},
		checkoutstate.FetchClientSecretFinished{})

	e.logger.Log(c, e.sessionUID, mylog.SeverityInfo, "Fetch client secret")

	secret, err := attempt(func() (basket.ClientSecret, error) {
		return e.api.GetClientSecret(c)
	})
	if err != nil {
		e.handleClientSecretFailure(c, err)
		return true
	}

	e.store.Dispatch(checkoutstate.ClientSecretReceived{ClientSecret: secret})

	return true
}
