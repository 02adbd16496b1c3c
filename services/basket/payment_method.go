package basket

type PaymentMethod string

const (
	PaymentMethodUndefined   PaymentMethod = ""
	PaymentMethodPayPal      PaymentMethod = "paypal"
	PaymentMethodApplePay    PaymentMethod = "apple-pay"
	PaymentMethodCybersource PaymentMethod = "cybersource"
	PaymentMethodStripe      PaymentMethod = "stripe"
	PaymentMethodMollie      PaymentMethod = "mollie"
	PaymentMethodAdyen       PaymentMethod = "adyen"
)

func (m PaymentMethod) String() string {
	if m == PaymentMethodUndefined {
		return "undefined"
	}
	return string(m)
}
