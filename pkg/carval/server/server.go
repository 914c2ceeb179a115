package server

import (
	"context"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nekruzvatanshoev/carval/pkg/carval/dal"
	"github.com/nekruzvatanshoev/carval/pkg/carval/listings"
	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "Blackbook GraphQL Fetcher"

// Valuator is the valuation service client.
type Valuator interface {
	TestCredentials(ctx context.Context) (string, error)
	GetSchemaInfo(ctx context.Context) (map[string]interface{}, error)
	FetchVehicleData(ctx context.Context, vin string, odometerKm int) (*dal.VehicleData, error)
	FetchPricingCards(ctx context.Context, vin string, odometerKm int) ([]dal.PricingRecord, error)
}

// Decoder decodes a VIN into vehicle attributes.
type Decoder interface {
	DecodeVIN(ctx context.Context, vin string) (*dal.DecodedVehicle, error)
}

// ListingSearcher finds comparable market listings.
type ListingSearcher interface {
	Search(ctx context.Context, q listings.Query) ([]dal.Listing, error)
}

// Services are the remote-facing components behind the API.
type Services struct {
	Valuator Valuator
	Decoder  Decoder
	Listings ListingSearcher
}

// Options tune the router.
type Options struct {
	AllowedOrigins []string
	// MaxListings caps market listings per search.
	MaxListings int
}

// NewHTTPServer returns a new HTTP server
func NewHTTPServer(addr string, svc Services, opts Options, log logger.Logger) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: NewRouter(svc, opts, log),
	}
}

// NewRouter wires every route plus CORS, request ids and metrics.
func NewRouter(svc Services, opts Options, log logger.Logger) http.Handler {
	server := newHTTPServer(svc, opts, log)

	r := mux.NewRouter()
	r.Use(server.requestContext)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/test-credentials", server.TestCredentials).Methods(http.MethodPost)
	api.HandleFunc("/fetch-vehicle", server.FetchVehicle).Methods(http.MethodPost)
	api.HandleFunc("/schema", server.GetSchema).Methods(http.MethodGet)
	api.HandleFunc("/pricing-cards", server.PricingCards).Methods(http.MethodPost)
	api.HandleFunc("/decode-vin", server.DecodeVIN).Methods(http.MethodPost)
	api.HandleFunc("/market-listings", server.MarketListings).Methods(http.MethodPost)
	api.HandleFunc("/health", server.Health).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})

	return corsHandler(r)
}

type httpServer struct {
	svc         Services
	maxListings int
	log         logger.Logger
}

func newHTTPServer(svc Services, opts Options, log logger.Logger) *httpServer {
	maxListings := opts.MaxListings
	if maxListings <= 0 {
		maxListings = 15
	}
	return &httpServer{
		svc:         svc,
		maxListings: maxListings,
		log:         log.With(map[string]interface{}{"component": "server"}),
	}
}
