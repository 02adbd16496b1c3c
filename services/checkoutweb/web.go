package checkoutweb

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/basketcheckout/lib/mycontext"
	"github.com/MarcGrol/basketcheckout/lib/myerrors"
	"github.com/MarcGrol/basketcheckout/lib/myhttp"
	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/lib/mypublisher"
	"github.com/MarcGrol/basketcheckout/lib/mypubsub"
	"github.com/MarcGrol/basketcheckout/lib/mystore"
	"github.com/MarcGrol/basketcheckout/lib/mytime"
	"github.com/MarcGrol/basketcheckout/lib/myuuid"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkoutevents"
	"github.com/MarcGrol/basketcheckout/services/orchestrator"
	"github.com/MarcGrol/basketcheckout/services/providers"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(store mystore.Store[SessionRecord], backend Backend, registryFactory RegistryFactory, nower mytime.Nower, uuider myuuid.UUIDer, pubsub mypubsub.PubSub, pub mypublisher.Publisher, engineOptions ...orchestrator.Option) *webService {
	logger := mylog.New("checkoutweb")
	return &webService{
		service: newService(store, backend, registryFactory, nower, uuider, logger, pubsub, pub, engineOptions...),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/checkout", s.createSessionPage()).Methods("POST")
	router.HandleFunc("/checkout/{sessionUID}", s.getProjectionPage()).Methods("GET")
	router.HandleFunc("/checkout/{sessionUID}/session", s.getSessionPage()).Methods("GET")

	router.HandleFunc("/checkout/{sessionUID}/basket", s.fetchBasketPage()).Methods("POST")
	router.HandleFunc("/checkout/{sessionUID}/client-secret", s.fetchClientSecretPage()).Methods("POST")
	router.HandleFunc("/checkout/{sessionUID}/coupon", s.addCouponPage()).Methods("POST")
	router.HandleFunc("/checkout/{sessionUID}/quantity", s.updateQuantityPage()).Methods("POST")
	router.HandleFunc("/checkout/{sessionUID}/payment/{method}", s.submitPaymentPage()).Methods("POST")

	// pubsub push
	router.HandleFunc("/api/checkout/event", s.handleEventPage()).Methods("POST")

	err := s.service.Subscribe(c)
	if err != nil {
		return err
	}

	return nil
}

func (s *webService) createSessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		record, err := s.service.createSession(c, r.FormValue("shopperUID"))
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("%s/checkout/%s", myhttp.HostnameWithScheme(r), record.SessionUID), http.StatusSeeOther)
	}
}

func (s *webService) getProjectionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		projection, err := s.service.getProjection(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, projection)
	}
}

func (s *webService) getSessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		record, err := s.service.getSession(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, record)
	}
}

func (s *webService) fetchBasketPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		resp, err := s.service.fetchBasket(c, mux.Vars(r)["sessionUID"])
		s.writeTrigger(c, w, resp, err)
	}
}

func (s *webService) fetchClientSecretPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		resp, err := s.service.fetchClientSecret(c, mux.Vars(r)["sessionUID"])
		s.writeTrigger(c, w, resp, err)
	}
}

func (s *webService) addCouponPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		resp, err := s.service.addCoupon(c, mux.Vars(r)["sessionUID"], r.FormValue("code"))
		s.writeTrigger(c, w, resp, err)
	}
}

func (s *webService) updateQuantityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		quantity, err := strconv.Atoi(r.FormValue("quantity"))
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("invalid quantity: %s", err)))
			return
		}

		resp, err := s.service.updateQuantity(c, mux.Vars(r)["sessionUID"], r.FormValue("sku"), quantity)
		s.writeTrigger(c, w, resp, err)
	}
}

func (s *webService) submitPaymentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req, err := checkoutRequestFromHTTP(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		vars := mux.Vars(r)
		resp, err := s.service.submitPayment(c, vars["sessionUID"], basket.PaymentMethod(vars["method"]), req)
		s.writeTrigger(c, w, resp, err)
	}
}

func checkoutRequestFromHTTP(r *http.Request) (providers.CheckoutRequest, error) {
	err := r.ParseForm()
	if err != nil {
		return providers.CheckoutRequest{}, myerrors.NewInvalidInputError(err)
	}

	req := providers.CheckoutRequest{}
	err = formcodec.NewDecoder().Decode(&req, r.Form)
	if err != nil {
		return providers.CheckoutRequest{}, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}

	if req.ReturnURL == "" {
		req.ReturnURL = myhttp.HostnameWithScheme(r) + "/receipt"
	}

	return req, nil
}

func (s *webService) handleEventPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := checkoutevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}

func (s *webService) writeTrigger(c context.Context, w http.ResponseWriter, resp TriggerResponse, err error) {
	writer := myhttp.NewWriter(s.logger)
	if err != nil {
		writer.WriteError(c, w, 2, err)
		return
	}

	httpStatus := http.StatusOK
	if !resp.Started {
		// dropped while another workflow of the same domain was in flight
		httpStatus = http.StatusAccepted
	}
	writer.Write(c, w, httpStatus, resp)
}
