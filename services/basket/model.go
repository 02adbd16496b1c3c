package basket

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeSeat           OrderType = "SEAT"
	OrderTypeBulkEnrollment OrderType = "BULK_ENROLLMENT"
	OrderTypeEntitlement    OrderType = "ENTITLEMENT"
)

// Product types as reported by the basket backend
const (
	ProductTypeSeat              = "Seat"
	ProductTypeEnrollmentCode    = "Enrollment Code"
	ProductTypeCourseEntitlement = "Course Entitlement"
)

type MessageType string

const (
	MessageTypeInfo    MessageType = "info"
	MessageTypeSuccess MessageType = "success"
	MessageTypeWarning MessageType = "warning"
	MessageTypeError   MessageType = "error"
)

type Message struct {
	Code        string         `json:"code"`
	UserMessage string         `json:"user_message,omitempty"`
	MessageType MessageType    `json:"message_type,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

type Product struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title,omitempty"`
	ProductType string          `json:"product_type,omitempty"`
	CourseKey   string          `json:"course_key,omitempty"`
	Sku         string          `json:"sku,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// Basket is the server-side representation of the items to be purchased plus computed totals.
// It is always replaced as a whole, never merged.
type Basket struct {
	BasketID            int             `json:"basket_id,omitempty"`
	Products            []Product       `json:"products"`
	OrderType           OrderType       `json:"order_type,omitempty"`
	Currency            string          `json:"currency,omitempty"`
	SummaryPrice        decimal.Decimal `json:"summary_price"`
	OrderTotal          decimal.Decimal `json:"order_total"`
	IsCurrencyConverted bool            `json:"is_currency_converted"`
	Messages            []Message       `json:"messages,omitempty"`
	DiscountJWT         string          `json:"discount_jwt,omitempty"`
	RedirectURL         string          `json:"redirect_url,omitempty"`
}

func (b Basket) IsEmpty() bool {
	return len(b.Products) == 0
}

// SingleSeat returns the product when the basket holds exactly one seat.
func (b Basket) SingleSeat() (Product, bool) {
	if len(b.Products) != 1 || b.Products[0].ProductType != ProductTypeSeat {
		return Product{}, false
	}
	return b.Products[0], true
}

// Normalized returns a copy with a non-nil product list and the order type derived from the products.
func (b Basket) Normalized() Basket {
	products := make([]Product, len(b.Products))
	copy(products, b.Products)
	b.Products = products

	if b.Messages != nil {
		messages := make([]Message, len(b.Messages))
		copy(messages, b.Messages)
		b.Messages = messages
	}

	b.OrderType = DeriveOrderType(b.Products)
	return b
}

// DeriveOrderType looks at the type of the last product only.
func DeriveOrderType(products []Product) OrderType {
	if len(products) == 0 {
		return OrderTypeSeat
	}

	switch products[len(products)-1].ProductType {
	case ProductTypeEnrollmentCode:
		return OrderTypeBulkEnrollment
	case ProductTypeCourseEntitlement:
		return OrderTypeEntitlement
	default:
		return OrderTypeSeat
	}
}

// Parse is the single ingestion point for basket payloads received from the backend.
func Parse(data []byte) (Basket, error) {
	b := Basket{}
	err := json.Unmarshal(data, &b)
	if err != nil {
		return Basket{}, fmt.Errorf("error parsing basket: %s", err)
	}
	return b.Normalized(), nil
}

type Discount struct {
	DiscountApplicable bool   `json:"discount_applicable"`
	JWT                string `json:"jwt,omitempty"`
}

type CaptureContext struct {
	KeyID string `json:"key_id"`
}

// ClientSecret is the server-issued token a card form needs before it can be rendered.
type ClientSecret struct {
	CaptureContext *CaptureContext `json:"capture_context,omitempty"`
}

func (cs ClientSecret) ID() string {
	if cs.CaptureContext == nil {
		return ""
	}
	return cs.CaptureContext.KeyID
}

func ParseClientSecret(data []byte) (ClientSecret, error) {
	cs := ClientSecret{}
	err := json.Unmarshal(data, &cs)
	if err != nil {
		return ClientSecret{}, fmt.Errorf("error parsing client secret: %s", err)
	}
	return cs, nil
}
