package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/coinshop/lib/myconfig"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/lib/mypubsub"
	"github.com/MarcGrol/coinshop/lib/myqueue"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
	"github.com/MarcGrol/coinshop/lib/myuuid"
	"github.com/MarcGrol/coinshop/services/catalog"
	"github.com/MarcGrol/coinshop/services/checkoutevents"
	"github.com/MarcGrol/coinshop/services/checkoutstripe"
	"github.com/MarcGrol/coinshop/services/inquiry"
	"github.com/MarcGrol/coinshop/services/order"
	"github.com/MarcGrol/coinshop/services/storefront"
	"github.com/MarcGrol/coinshop/services/warmup"
)

func main() {
	c := context.Background()

	cfg, err := myconfig.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %s", err)
	}

	router := mux.NewRouter()

	cleanup, err := createServices(c, cfg, router)
	if err != nil {
		log.Fatalf("Error creating services: %s", err)
	}
	defer cleanup()

	startWebServerBlocking(cfg.Port, router)
}

func createServices(c context.Context, cfg myconfig.Config, router *mux.Router) (func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	storeOpts := mystore.Options{
		ProjectID: cfg.GoogleCloudProject,
	}
	if cfg.DatabaseURL != "" {
		pool, poolCleanup, err := mystore.ConnectPostgres(c, cfg.DatabaseURL)
		if err != nil {
			return cleanup, fmt.Errorf("error connecting to postgres: %s", err)
		}
		cleanups = append(cleanups, poolCleanup)
		storeOpts.Pool = pool
	}

	pubsub, pubsubCleanup, err := mypubsub.New(c, cfg.GoogleCloudProject)
	if err != nil {
		return cleanup, fmt.Errorf("error creating pubsub client: %s", err)
	}
	cleanups = append(cleanups, pubsubCleanup)

	queue, queueCleanup, err := myqueue.New(c, myqueue.Options{
		ProjectID:  cfg.GoogleCloudProject,
		LocationID: cfg.LocationID,
		QueueName:  cfg.QueueName,
	})
	if err != nil {
		return cleanup, fmt.Errorf("error creating task queue: %s", err)
	}
	cleanups = append(cleanups, queueCleanup)

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	publisher, publisherCleanup, err := mypublisher.New(c, storeOpts, pubsub, queue, nower)
	if err != nil {
		return cleanup, fmt.Errorf("error creating publisher: %s", err)
	}
	cleanups = append(cleanups, publisherCleanup)
	publisher.RegisterEndpoints(c, router)

	for _, topic := range []string{catalog.TopicName, order.TopicName, checkoutevents.TopicName, inquiry.TopicName} {
		err = publisher.CreateTopic(c, topic)
		if err != nil {
			return cleanup, fmt.Errorf("error creating topic %s: %s", topic, err)
		}
	}

	productStore, productCleanup, err := mystore.New[catalog.Product](c, storeOpts)
	if err != nil {
		return cleanup, fmt.Errorf("error creating product store: %s", err)
	}
	cleanups = append(cleanups, productCleanup)

	categoryStore, categoryCleanup, err := mystore.New[catalog.Category](c, storeOpts)
	if err != nil {
		return cleanup, fmt.Errorf("error creating category store: %s", err)
	}
	cleanups = append(cleanups, categoryCleanup)

	heroSlideStore, heroSlideCleanup, err := mystore.New[catalog.HeroSlide](c, storeOpts)
	if err != nil {
		return cleanup, fmt.Errorf("error creating hero slide store: %s", err)
	}
	cleanups = append(cleanups, heroSlideCleanup)

	orderStore, orderCleanup, err := mystore.New[order.Order](c, storeOpts)
	if err != nil {
		return cleanup, fmt.Errorf("error creating order store: %s", err)
	}
	cleanups = append(cleanups, orderCleanup)

	inquiryStore, inquiryCleanup, err := mystore.New[inquiry.Inquiry](c, storeOpts)
	if err != nil {
		return cleanup, fmt.Errorf("error creating inquiry store: %s", err)
	}
	cleanups = append(cleanups, inquiryCleanup)

	admin := myhttp.Credentials{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}

	catalogService := catalog.NewWebService(admin, nower, publisher, productStore, categoryStore, heroSlideStore)
	catalogService.RegisterEndpoints(c, router)

	orderService := order.NewWebService(admin, nower, orderStore, publisher)
	orderService.RegisterEndpoints(c, router)

	checkoutService := checkoutstripe.NewWebService(checkoutstripe.Config{
		BaseURL:       cfg.BaseURL,
		Currency:      cfg.Currency,
		WebhookSecret: cfg.StripeWebhookSecret,
	}, checkoutstripe.NewPayer(cfg.StripeAPIKey), orderService, publisher)
	checkoutService.RegisterEndpoints(c, router)

	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		log.Printf("SESSION_SECRET not configured: carts do not survive a restart")
		sessionSecret = uuider.Create()
	}
	sessionStore := storefront.NewCookieStore(sessionSecret, strings.HasPrefix(cfg.BaseURL, "https://"))
	storefrontService := storefront.NewWebService(sessionStore, uuider, catalogService, checkoutService)
	storefrontService.RegisterEndpoints(c, router)

	inquiryService := inquiry.NewWebService(admin, nower, uuider, inquiryStore, publisher)
	inquiryService.RegisterEndpoints(c, router)

	warmupService := warmup.NewWebService(categoryStore)
	warmupService.RegisterEndpoints(c, router)

	return cleanup, nil
}

func startWebServerBlocking(port string, router *mux.Router) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
