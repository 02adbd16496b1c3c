package basketapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/basketcheckout/lib/myerrors"
	"github.com/MarcGrol/basketcheckout/lib/mystore"
	"github.com/MarcGrol/basketcheckout/lib/myuuid"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/checkouterrors"
)

// Magic values understood by the fake backend
const (
	FakeInvalidCoupon  = "INVALID"
	FakeDeclinedToken  = "declined"
	FakeDiscountJWT    = "fake-discount-jwt"
	FakeDiscountCourse = "course-v1:demo+discount+2024"
)

const discountPercentage = 10

// ShopperBasket is how the fake backend persists a basket. The basket itself is kept as json
// so that it survives any store.
type ShopperBasket struct {
	ShopperUID       string
	CurrentBasketID  int
	BasketJSON       string `datastore:",noindex"`
	PaymentReference string
}

// FakeBackend behaves like the real basket backend, good enough for local development and tests.
type FakeBackend struct {
	store  mystore.Store[ShopperBasket]
	uuider myuuid.UUIDer
}

func NewFakeBackend(store mystore.Store[ShopperBasket], uuider myuuid.UUIDer) *FakeBackend {
	return &FakeBackend{
		store:  store,
		uuider: uuider,
	}
}

func NewInMemoryFakeBackend() *FakeBackend {
	store, _, _ := mystore.NewInMemoryStore[ShopperBasket](context.Background())
	return NewFakeBackend(store, myuuid.RealUUIDer{})
}

func (f *FakeBackend) ForShopper(shopperUID string) API {
	return &fakeShopper{
		backend:    f,
		shopperUID: shopperUID,
	}
}

// Seed replaces the basket of a shopper.
func (f *FakeBackend) Seed(c context.Context, shopperUID string, b basket.Basket) error {
	return f.store.RunInTransaction(c, func(c context.Context) error {
		sb, _, err := f.load(c, shopperUID)
		if err != nil {
			return err
		}
		b.BasketID = sb.CurrentBasketID
		return f.save(c, &sb, b)
	})
}

func DemoBasket() basket.Basket {
	price := decimal.RequireFromString("49.00")
	return basket.Basket{
		Currency: "USD",
		Products: []basket.Product{
			{
				ID:          "1",
				Title:       "Demonstration course",
				ProductType: basket.ProductTypeSeat,
				CourseKey:   FakeDiscountCourse,
				Sku:         "8CF08E5",
				Price:       price,
			},
		},
		SummaryPrice: price,
		OrderTotal:   price,
	}
}

func (f *FakeBackend) load(c context.Context, shopperUID string) (ShopperBasket, basket.Basket, error) {
	sb, found, err := f.store.Get(c, shopperUID)
	if err != nil {
		return ShopperBasket{}, basket.Basket{}, myerrors.NewInternalError(err)
	}
	if !found || sb.BasketJSON == "" {
		sb = ShopperBasket{ShopperUID: shopperUID, CurrentBasketID: sb.CurrentBasketID + 1}
		b := DemoBasket()
		b.BasketID = sb.CurrentBasketID
		return sb, b.Normalized(), nil
	}

	b, err := basket.Parse([]byte(sb.BasketJSON))
	if err != nil {
		return ShopperBasket{}, basket.Basket{}, myerrors.NewInternalError(err)
	}
	return sb, b, nil
}

func (f *FakeBackend) save(c context.Context, sb *ShopperBasket, b basket.Basket) error {
	basketJSON, err := json.Marshal(b)
	if err != nil {
		return myerrors.NewInternalError(err)
	}
	sb.BasketJSON = string(basketJSON)
	return f.store.Put(c, sb.ShopperUID, *sb)
}

type fakeShopper struct {
	backend    *FakeBackend
	shopperUID string
}

func (fs *fakeShopper) GetBasket(c context.Context) (basket.Basket, error) {
	b := basket.Basket{}
	err := fs.backend.store.RunInTransaction(c, func(c context.Context) error {
		sb, current, err := fs.backend.load(c, fs.shopperUID)
		if err != nil {
			return err
		}
		b = current
		return fs.backend.save(c, &sb, current)
	})
	return b, err
}

func (fs *fakeShopper) GetBasketWithDiscount(c context.Context, discountJWT string) (basket.Basket, error) {
	if discountJWT != FakeDiscountJWT {
		return basket.Basket{}, &checkouterrors.RawError{
			HTTPStatus: http.StatusBadRequest,
			Code:       "invalid-discount-jwt",
		}
	}

	b := basket.Basket{}
	err := fs.backend.store.RunInTransaction(c, func(c context.Context) error {
		sb, current, err := fs.backend.load(c, fs.shopperUID)
		if err != nil {
			return err
		}
		if current.DiscountJWT == "" {
			current.DiscountJWT = discountJWT
			current.OrderTotal = current.SummaryPrice.
				Mul(decimal.NewFromInt(100 - discountPercentage)).
				Div(decimal.NewFromInt(100)).
				Round(2)
			current.Messages = []basket.Message{{
				Code:        "discount-applied",
				MessageType: basket.MessageTypeSuccess,
				Data:        map[string]any{"percentage": discountPercentage},
			}}
		}
		b = current
		return fs.backend.save(c, &sb, current)
	})
	return b, err
}

func (fs *fakeShopper) GetDiscount(c context.Context, courseKey string) (basket.Discount, error) {
	if courseKey == FakeDiscountCourse {
		return basket.Discount{DiscountApplicable: true, JWT: FakeDiscountJWT}, nil
	}
	return basket.Discount{DiscountApplicable: false}, nil
}

func (fs *fakeShopper) GetClientSecret(c context.Context) (basket.ClientSecret, error) {
	b, err := fs.GetBasket(c)
	if err != nil {
		return basket.ClientSecret{}, err
	}
	return basket.ClientSecret{
		CaptureContext: &basket.CaptureContext{
			KeyID: fmt.Sprintf("pi_%d_secret_%s", b.BasketID, fs.backend.uuider.Create()),
		},
	}, nil
}

func (fs *fakeShopper) AddCoupon(c context.Context, code string) (basket.Basket, error) {
	return fs.mutate(c, func(b basket.Basket) (basket.Basket, error) {
		if strings.EqualFold(code, FakeInvalidCoupon) {
			return b, &checkouterrors.RawError{
				HTTPStatus: http.StatusBadRequest,
				Messages: []basket.Message{{
					Code:        "code-does-not-exist",
					MessageType: basket.MessageTypeError,
					Data:        map[string]any{"code": code},
				}},
			}
		}
		b.Messages = []basket.Message{{Code: "coupon-added", MessageType: basket.MessageTypeSuccess, Data: map[string]any{"code": code}}}
		return b, nil
	})
}

func (fs *fakeShopper) UpdateQuantity(c context.Context, sku string, quantity int) (basket.Basket, error) {
	return fs.mutate(c, func(b basket.Basket) (basket.Basket, error) {
		if quantity < 1 {
			return b, &checkouterrors.RawError{
				HTTPStatus:  http.StatusBadRequest,
				FieldErrors: []checkouterrors.FieldError{{FieldName: "quantity", UserMessage: "Must be at least 1"}},
			}
		}
		for i, p := range b.Products {
			if p.Sku == sku {
				if quantity > 1 {
					b.Products[i].ProductType = basket.ProductTypeEnrollmentCode
				} else {
					b.Products[i].ProductType = basket.ProductTypeSeat
				}
				b.SummaryPrice = p.Price.Mul(decimal.NewFromInt(int64(quantity)))
				b.OrderTotal = b.SummaryPrice
				b.Messages = nil
				return b, nil
			}
		}
		return b, &checkouterrors.RawError{
			HTTPStatus: http.StatusNotFound,
			Code:       "product-not-found",
		}
	})
}

func (fs *fakeShopper) SubmitPayment(c context.Context, method basket.PaymentMethod, req PaymentRequest) (basket.Basket, error) {
	result := basket.Basket{}
	err := fs.backend.store.RunInTransaction(c, func(c context.Context) error {
		sb, current, err := fs.backend.load(c, fs.shopperUID)
		if err != nil {
			return err
		}

		rejection := validatePayment(current, method, req)
		if rejection != nil {
			// the rejection may carry a basket that differs from what the shopper has seen
			return rejection
		}

		paid := current
		paid.RedirectURL = receiptURL(req.ReturnURL, current.BasketID)
		paid.Messages = nil
		result = paid

		// the next basket of this shopper starts empty
		sb.PaymentReference = req.PaymentReference
		sb.CurrentBasketID = current.BasketID + 1
		return fs.backend.save(c, &sb, basket.Basket{BasketID: sb.CurrentBasketID, Products: []basket.Product{}})
	})
	if err != nil {
		return basket.Basket{}, err
	}
	return result, nil
}

func validatePayment(current basket.Basket, method basket.PaymentMethod, req PaymentRequest) *checkouterrors.RawError {
	if current.IsEmpty() {
		return &checkouterrors.RawError{
			HTTPStatus: http.StatusBadRequest,
			Messages:   []basket.Message{{Code: "empty-basket", MessageType: basket.MessageTypeError}},
			Basket:     &current,
		}
	}
	if req.BasketID != current.BasketID {
		return &checkouterrors.RawError{
			HTTPStatus: http.StatusConflict,
			Messages:   []basket.Message{{Code: checkouterrors.CodeBasketChanged, MessageType: basket.MessageTypeError}},
			Basket:     &current,
		}
	}
	if method == basket.PaymentMethodCybersource {
		fieldErrors := []checkouterrors.FieldError{}
		if req.Billing == nil || req.Billing.Address == "" {
			fieldErrors = append(fieldErrors, checkouterrors.FieldError{FieldName: "address_line1", UserMessage: "This field is required"})
		}
		if req.Billing == nil || req.Billing.PostalCode == "" {
			fieldErrors = append(fieldErrors, checkouterrors.FieldError{FieldName: "postal_code", UserMessage: "This field is required"})
		}
		if len(fieldErrors) > 0 {
			return &checkouterrors.RawError{
				HTTPStatus:  http.StatusBadRequest,
				FieldErrors: fieldErrors,
				Basket:      &current,
			}
		}
	}
	if req.Token == FakeDeclinedToken {
		return &checkouterrors.RawError{
			HTTPStatus: http.StatusPaymentRequired,
			Declined:   true,
			Messages:   []basket.Message{{Code: checkouterrors.CodeTransactionDeclined, MessageType: basket.MessageTypeError}},
			Basket:     &current,
		}
	}
	return nil
}

func receiptURL(returnURL string, basketID int) string {
	if returnURL == "" {
		returnURL = "/receipt"
	}
	separator := "?"
	if strings.Contains(returnURL, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%sbasket_id=%d", returnURL, separator, basketID)
}

func (fs *fakeShopper) mutate(c context.Context, f func(b basket.Basket) (basket.Basket, error)) (basket.Basket, error) {
	result := basket.Basket{}
	err := fs.backend.store.RunInTransaction(c, func(c context.Context) error {
		sb, current, err := fs.backend.load(c, fs.shopperUID)
		if err != nil {
			return err
		}

		next, err := f(current.Normalized())
		if err != nil {
			if raw, ok := err.(*checkouterrors.RawError); ok && raw.Basket == nil && raw.Code == "" {
				raw.Basket = &current
			}
			return err
		}

		next = next.Normalized()
		result = next
		return fs.backend.save(c, &sb, next)
	})
	if err != nil {
		return basket.Basket{}, err
	}
	return result, nil
}
