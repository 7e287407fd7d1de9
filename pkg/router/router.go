package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/starpaykids/allowance/internal/auth"
	"github.com/starpaykids/allowance/internal/connector"
	"github.com/starpaykids/allowance/internal/guard"
	"github.com/starpaykids/allowance/internal/transfers"
	"github.com/starpaykids/allowance/pkg/allowance"
	"github.com/starpaykids/allowance/pkg/queue"
)

type Router struct {
	apiKey  string
	wallet  allowance.WalletProvider
	slot    allowance.SessionSlot
	gateway allowance.Gateway
	q       *queue.Service
	wm      allowance.WebhookMessager
}

func NewServer(apiKey string, wallet allowance.WalletProvider, slot allowance.SessionSlot, gateway allowance.Gateway, q *queue.Service, wm allowance.WebhookMessager) *Router {
	return &Router{
		apiKey,
		wallet,
		slot,
		gateway,
		q,
		wm,
	}
}

// implement the Server interface
func (r *Router) Start(port int) error {
	cr := chi.NewRouter()

	a := auth.New(r.apiKey)

	// configure middleware
	cr.Use(middleware.RequestID)
	cr.Use(middleware.Logger)

	// configure custom middleware
	cr.Use(OptionsMiddleware)
	cr.Use(HealthMiddleware)
	cr.Use(RequestSizeLimitMiddleware(1 << 20)) // Limit request bodies to 1MB
	cr.Use(a.AuthMiddleware)
	cr.Use(middleware.Compress(9))

	// instantiate handlers
	conn := connector.NewService(r.wallet, r.slot)
	gd := guard.NewService(r.wallet, r.slot)
	tr := transfers.NewService(gd, r.gateway, r.q, r.wm)

	// connector screen
	cr.Route("/session", func(cr chi.Router) {
		cr.Get("/", conn.HandleCheck)
		cr.Post("/", conn.HandleConnect)
		cr.Delete("/", gd.HandleDisconnect)
	})

	// transfer screen
	cr.Route("/allowance", func(cr chi.Router) {
		cr.Get("/", tr.HandleGet)
		cr.Post("/", tr.HandleSubmit)
	})

	// start the server
	return http.ListenAndServe(fmt.Sprintf(":%v", port), cr)
}
