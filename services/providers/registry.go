package providers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MarcGrol/basketcheckout/services/basket"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// Registry maps payment methods onto their checkout strategy. It is filled once at startup.
type Registry struct {
	strategies map[basket.PaymentMethod]Strategy
}

func NewRegistry() *Registry {
	return &Registry{
		strategies: map[basket.PaymentMethod]Strategy{},
	}
}

func (r *Registry) Register(method basket.PaymentMethod, strategy Strategy) *Registry {
	r.strategies[method] = strategy
	return r
}

func (r *Registry) Resolve(method basket.PaymentMethod) (Strategy, error) {
	strategy, found := r.strategies[method]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPaymentMethod, method)
	}
	return strategy, nil
}

func (r *Registry) RequiresClientSecret(method basket.PaymentMethod) bool {
	strategy, found := r.strategies[method]
	if !found {
		return false
	}
	requirer, ok := strategy.(SecretRequirer)
	return ok && requirer.RequiresClientSecret()
}

func (r *Registry) Methods() []basket.PaymentMethod {
	methods := make([]basket.PaymentMethod, 0, len(r.strategies))
	for m := range r.strategies {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}
