package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/basketcheckout/lib/myhttp"
	"github.com/MarcGrol/basketcheckout/lib/myhttpclient"
	"github.com/MarcGrol/basketcheckout/lib/mypublisher"
	"github.com/MarcGrol/basketcheckout/lib/mypubsub"
	"github.com/MarcGrol/basketcheckout/lib/myqueue"
	"github.com/MarcGrol/basketcheckout/lib/mystore"
	"github.com/MarcGrol/basketcheckout/lib/mytime"
	"github.com/MarcGrol/basketcheckout/lib/myuuid"
	"github.com/MarcGrol/basketcheckout/lib/myvault"
	"github.com/MarcGrol/basketcheckout/services/basket"
	"github.com/MarcGrol/basketcheckout/services/basketapi"
	"github.com/MarcGrol/basketcheckout/services/checkoutadyen"
	"github.com/MarcGrol/basketcheckout/services/checkoutapplepay"
	"github.com/MarcGrol/basketcheckout/services/checkoutcybersource"
	"github.com/MarcGrol/basketcheckout/services/checkoutmollie"
	"github.com/MarcGrol/basketcheckout/services/checkoutpaypal"
	"github.com/MarcGrol/basketcheckout/services/checkoutstripe"
	"github.com/MarcGrol/basketcheckout/services/checkoutweb"
	"github.com/MarcGrol/basketcheckout/services/orchestrator"
	"github.com/MarcGrol/basketcheckout/services/providers"
	"github.com/MarcGrol/basketcheckout/services/warmup"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	vault, vaultCleanup, err := myvault.New[myvault.Token](c)
	if err != nil {
		log.Fatalf("Error creating vault: %s", err)
	}
	defer vaultCleanup()
	warmup.NewService(vault, basket.PaymentMethodStripe.String(), basket.PaymentMethodMollie.String(), basket.PaymentMethodAdyen.String()).RegisterEndpoints(c, router)

	backend, backendCleanup, err := basketBackend(c, router)
	if err != nil {
		log.Fatalf("Error creating basket backend: %s", err)
	}
	defer backendCleanup()

	registryFactory, err := providerRegistry(vault, nower)
	if err != nil {
		log.Fatalf("Error creating payment providers: %s", err)
	}

	sessionStore, sessionStoreCleanup, err := mystore.New[checkoutweb.SessionRecord](c)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionStoreCleanup()

	discountCheck, _ := strconv.ParseBool(os.Getenv("ENABLE_DISCOUNT_CHECK"))

	checkoutService := checkoutweb.NewService(sessionStore, backend, registryFactory, nower, uuider, pubsub, publisher,
		orchestrator.WithDiscountCheck(discountCheck))
	err = checkoutService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering checkout service: %s", err)
	}

	startWebServerBlocking(router)
}

// basketBackend talks to the backend at BASKET_API_BASE_URL. Without it, a fake backend is served
// by this process itself.
func basketBackend(c context.Context, router *mux.Router) (checkoutweb.Backend, func(), error) {
	baseURL := os.Getenv("BASKET_API_BASE_URL")
	if baseURL != "" {
		return basketapi.NewClient(baseURL, myhttpclient.New()), func() {}, nil
	}

	store, cleanup, err := mystore.New[basketapi.ShopperBasket](c)
	if err != nil {
		return nil, func() {}, err
	}
	basketapi.NewFakeServer(basketapi.NewFakeBackend(store, myuuid.RealUUIDer{})).RegisterEndpoints(c, router)

	log.Printf("BASKET_API_BASE_URL not set: using fake basket backend")

	return basketapi.NewClient(myhttp.GuessHostnameWithScheme(), myhttpclient.New()), cleanup, nil
}

// providerRegistry registers the providers that need no credentials and those whose credentials are configured.
func providerRegistry(vault myvault.VaultReader[myvault.Token], nower mytime.Nower) (checkoutweb.RegistryFactory, error) {
	stripeAPIKey := os.Getenv("STRIPE_API_KEY")

	mollieConfig := checkoutmollie.Config{
		APIKey:    os.Getenv("MOLLIE_API_KEY"),
		ProfileID: os.Getenv("MOLLIE_PROFILE_ID"),
	}

	adyenConfig := checkoutadyen.Config{
		Environment:     os.Getenv("ADYEN_ENVIRONMENT"),
		MerchantAccount: os.Getenv("ADYEN_MERCHANT_ACCOUNT"),
		APIKey:          os.Getenv("ADYEN_API_KEY"),
	}
	if adyenConfig.APIKey != "" && adyenConfig.MerchantAccount == "" {
		return nil, fmt.Errorf("missing env-var ADYEN_MERCHANT_ACCOUNT")
	}

	// payers keep the credentials of their last call, so each session gets its own
	return func(api basketapi.API) *providers.Registry {
		registry := providers.NewRegistry().
			Register(basket.PaymentMethodPayPal, checkoutpaypal.New(api)).
			Register(basket.PaymentMethodCybersource, checkoutcybersource.New(api)).
			Register(basket.PaymentMethodApplePay, checkoutapplepay.New(api, checkoutapplepay.NewPostedSheet()))
		if stripeAPIKey != "" {
			registry.Register(basket.PaymentMethodStripe, checkoutstripe.New(stripeAPIKey, api, checkoutstripe.NewPayer(), vault))
		}
		if mollieConfig.APIKey != "" {
			molliePayer, err := checkoutmollie.NewPayer()
			if err != nil {
				log.Printf("Error creating mollie client, mollie not offered: %s", err)
			} else {
				registry.Register(basket.PaymentMethodMollie, checkoutmollie.New(mollieConfig, api, molliePayer, vault))
			}
		}
		if adyenConfig.APIKey != "" {
			adyenPayer := checkoutadyen.NewPayer(adyenConfig.Environment, adyenConfig.APIKey)
			registry.Register(basket.PaymentMethodAdyen, checkoutadyen.New(adyenConfig, api, adyenPayer, vault, nower))
		}
		return registry
	}, nil
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
