package basketapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/basketcheckout/lib/mycontext"
	"github.com/MarcGrol/basketcheckout/lib/myerrors"
	"github.com/MarcGrol/basketcheckout/lib/myhttp"
	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
)

// FakeServer exposes a FakeBackend over http using the same wire format as the real backend.
type FakeServer struct {
	backend *FakeBackend
	logger  mylog.Logger
}

func NewFakeServer(backend *FakeBackend) *FakeServer {
	return &FakeServer{
		backend: backend,
		logger:  mylog.New("fakebasketbackend"),
	}
}

func (s *FakeServer) RegisterEndpoints(c context.Context, router *mux.Router) {
	sub := router.PathPrefix("/api/shoppers/{shopperUID}").Subrouter()
	sub.HandleFunc("/basket", s.getBasket()).Methods(http.MethodGet)
	sub.HandleFunc("/basket/coupons", s.addCoupon()).Methods(http.MethodPost)
	sub.HandleFunc("/basket/quantity", s.updateQuantity()).Methods(http.MethodPost)
	sub.HandleFunc("/discount/{courseKey}", s.getDiscount()).Methods(http.MethodGet)
	sub.HandleFunc("/client-secret", s.getClientSecret()).Methods(http.MethodGet)
	sub.HandleFunc("/payment/{method}", s.submitPayment()).Methods(http.MethodPost)
}

func (s *FakeServer) api(r *http.Request) API {
	return s.backend.ForShopper(mux.Vars(r)["shopperUID"])
}

func (s *FakeServer) getBasket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		var b basket.Basket
		var err error
		if jwt := r.URL.Query().Get("discount_jwt"); jwt != "" {
			b, err = s.api(r).GetBasketWithDiscount(c, jwt)
		} else {
			b, err = s.api(r).GetBasket(c)
		}
		s.respond(c, w, b, err)
	}
}

func (s *FakeServer) addCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		req := CouponRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			s.respond(c, w, nil, myerrors.NewInvalidInputError(err))
			return
		}

		b, err := s.api(r).AddCoupon(c, req.Code)
		s.respond(c, w, b, err)
	}
}

func (s *FakeServer) updateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		req := QuantityRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			s.respond(c, w, nil, myerrors.NewInvalidInputError(err))
			return
		}

		b, err := s.api(r).UpdateQuantity(c, req.Sku, req.Quantity)
		s.respond(c, w, b, err)
	}
}

func (s *FakeServer) getDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		discount, err := s.api(r).GetDiscount(c, mux.Vars(r)["courseKey"])
		s.respond(c, w, discount, err)
	}
}

func (s *FakeServer) getClientSecret() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		secret, err := s.api(r).GetClientSecret(c)
		s.respond(c, w, secret, err)
	}
}

func (s *FakeServer) submitPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		req := PaymentRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			s.respond(c, w, nil, myerrors.NewInvalidInputError(err))
			return
		}

		b, err := s.api(r).SubmitPayment(c, basket.PaymentMethod(mux.Vars(r)["method"]), req)
		s.respond(c, w, b, err)
	}
}

func (s *FakeServer) respond(c context.Context, w http.ResponseWriter, resp any, err error) {
	writer := myhttp.NewWriter(s.logger)
	if err == nil {
		writer.Write(c, w, http.StatusOK, resp)
		return
	}

	var raw *checkouterrors.RawError
	if errors.As(err, &raw) {
		status := raw.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		writer.Write(c, w, status, toErrorBody(raw))
		return
	}

	status := myerrors.GetHTTPStatus(err)
	writer.Write(c, w, status, ErrorBody{
		ErrorCode:   strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "-")),
		UserMessage: err.Error(),
	})
}

func toErrorBody(raw *checkouterrors.RawError) ErrorBody {
	return ErrorBody{
		ErrorCode:   raw.Code,
		UserMessage: raw.UserMessage,
		Declined:    raw.Declined,
		FieldErrors: raw.FieldErrors,
		Messages:    raw.Messages,
		Basket:      raw.Basket,
	}
}
