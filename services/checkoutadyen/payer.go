package checkoutadyen

import (
	"context"
	"fmt"
	"strings"

	"github.com/adyen/adyen-go-api-library/v6/src/adyen"
	"github.com/adyen/adyen-go-api-library/v6/src/checkout"
	"github.com/adyen/adyen-go-api-library/v6/src/common"
)

//go:generate mockgen -source=payer.go -package checkoutadyen -destination payer_mock.go Payer
type Payer interface {
	UseAPIKey(key string)
	UseToken(accessToken string)
	CreatePayByLink(c context.Context, req checkout.CreatePaymentLinkRequest) (checkout.PaymentLinkResponse, error)
}

type adyenPayer struct {
	client *adyen.APIClient
}

func NewPayer(environment string, apiKey string) Payer {
	client := adyen.NewClient(&common.Config{
		ApiKey:      apiKey,
		Environment: common.Environment(strings.ToUpper(environment)),
	})

	return &adyenPayer{
		client: client,
	}
}

func (p *adyenPayer) UseAPIKey(apiKey string) {
	delete(p.client.GetConfig().DefaultHeader, "Authorization")
	p.client.GetConfig().ApiKey = apiKey
}

func (p *adyenPayer) UseToken(accessToken string) {
	config := p.client.GetConfig()
	config.ApiKey = ""
	if config.DefaultHeader == nil {
		config.DefaultHeader = map[string]string{}
	}
	config.DefaultHeader["Authorization"] = "Bearer " + accessToken
}

func (p *adyenPayer) CreatePayByLink(c context.Context, req checkout.CreatePaymentLinkRequest) (checkout.PaymentLinkResponse, error) {
	resp, _, err := p.client.Checkout.PaymentLinks(&req, c)
	if err != nil {
		return checkout.PaymentLinkResponse{}, fmt.Errorf("error creating adyen pay-by-link: %w", err)
	}

	return resp, nil
}
