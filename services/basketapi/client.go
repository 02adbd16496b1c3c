package basketapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/MarcGrol/basketcheckout/lib/myerrors"
	"github.com/MarcGrol/basketcheckout/lib/myhttpclient"
	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/services/basket"
)

const (
	breakerConsecutiveFailures = 5
	breakerOpenPeriod          = 30 * time.Second
)

var errServerFailure = errors.New("basket backend failure")

type response struct {
	status int
	body   []byte
}

// Client talks json to the basket backend. A circuit breaker stops hammering a failing backend;
// failures are never retried.
type Client struct {
	baseURL string
	sender  myhttpclient.HTTPSender
	breaker *gobreaker.CircuitBreaker[response]
	logger  mylog.Logger
}

func NewClient(baseURL string, sender myhttpclient.HTTPSender) *Client {
	logger := mylog.New("basketapi")
	return &Client{
		baseURL: baseURL,
		sender:  sender,
		logger:  logger,
		breaker: gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
			Name:    "basket-backend",
			Timeout: breakerOpenPeriod,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerConsecutiveFailures
			},
			IsSuccessful: func(err error) bool {
				// only transport failures and 5xx responses count against the backend
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Log(context.Background(), "", mylog.SeverityWarn, "Circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// ForShopper returns the API as seen by the given shopper.
func (cl *Client) ForShopper(shopperUID string) API {
	return &shopperClient{
		client:     cl,
		shopperUID: shopperUID,
	}
}

type shopperClient struct {
	client     *Client
	shopperUID string
}

func (sc *shopperClient) path(format string, args ...any) string {
	return fmt.Sprintf("/api/shoppers/%s", url.PathEscape(sc.shopperUID)) + fmt.Sprintf(format, args...)
}

func (sc *shopperClient) GetBasket(c context.Context) (basket.Basket, error) {
	return sc.basketCall(c, http.MethodGet, sc.path("/basket"), nil)
}

func (sc *shopperClient) GetBasketWithDiscount(c context.Context, discountJWT string) (basket.Basket, error) {
	return sc.basketCall(c, http.MethodGet, sc.path("/basket?discount_jwt=%s", url.QueryEscape(discountJWT)), nil)
}

func (sc *shopperClient) GetDiscount(c context.Context, courseKey string) (basket.Discount, error) {
	discount := basket.Discount{}
	err := sc.client.do(c, sc.shopperUID, http.MethodGet, sc.path("/discount/%s", url.PathEscape(courseKey)), nil, &discount)
	if err != nil {
		return basket.Discount{}, err
	}
	return discount, nil
}

func (sc *shopperClient) GetClientSecret(c context.Context) (basket.ClientSecret, error) {
	secret := basket.ClientSecret{}
	err := sc.client.do(c, sc.shopperUID, http.MethodGet, sc.path("/client-secret"), nil, &secret)
	if err != nil {
		return basket.ClientSecret{}, err
	}
	return secret, nil
}

func (sc *shopperClient) AddCoupon(c context.Context, code string) (basket.Basket, error) {
	return sc.basketCall(c, http.MethodPost, sc.path("/basket/coupons"), CouponRequest{Code: code})
}

func (sc *shopperClient) UpdateQuantity(c context.Context, sku string, quantity int) (basket.Basket, error) {
	return sc.basketCall(c, http.MethodPost, sc.path("/basket/quantity"), QuantityRequest{Sku: sku, Quantity: quantity})
}

func (sc *shopperClient) SubmitPayment(c context.Context, method basket.PaymentMethod, req PaymentRequest) (basket.Basket, error) {
	return sc.basketCall(c, http.MethodPost, sc.path("/payment/%s", url.PathEscape(string(method))), req)
}

func (sc *shopperClient) basketCall(c context.Context, method string, path string, reqBody any) (basket.Basket, error) {
	b := basket.Basket{}
	err := sc.client.do(c, sc.shopperUID, method, path, reqBody, &b)
	if err != nil {
		return basket.Basket{}, err
	}
	return b.Normalized(), nil
}

func (cl *Client) do(c context.Context, traceLabel string, method string, path string, reqBody any, respBody any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error marshalling request for %s %s: %s", method, path, err))
		}
	}

	resp, err := cl.breaker.Execute(func() (response, error) {
		status, body, err := cl.sender.Send(c, method, cl.baseURL+path, payload)
		if err != nil {
			return response{}, err
		}
		if status >= http.StatusInternalServerError {
			return response{status: status, body: body}, errServerFailure
		}
		return response{status: status, body: body}, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			cl.logger.Log(c, traceLabel, mylog.SeverityWarn, "Basket backend unavailable for %s %s: %s", method, path, err)
			return myerrors.NewUnavailableError(fmt.Errorf("basket backend unavailable: %w", err))
		case errors.Is(err, errServerFailure):
			cl.logger.Log(c, traceLabel, mylog.SeverityError, "Basket backend failed %s %s: %d", method, path, resp.status)
			return parseErrorBody(resp.status, resp.body)
		default:
			cl.logger.Log(c, traceLabel, mylog.SeverityError, "Error calling basket backend %s %s: %s", method, path, err)
			return fmt.Errorf("error calling basket backend %s %s: %w", method, path, err)
		}
	}

	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		cl.logger.Log(c, traceLabel, mylog.SeverityInfo, "Basket backend rejected %s %s: %d", method, path, resp.status)
		return parseErrorBody(resp.status, resp.body)
	}

	err = json.Unmarshal(resp.body, respBody)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error parsing response of %s %s: %s", method, path, err))
	}

	return nil
}
