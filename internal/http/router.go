package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the storefront routes behind the shared middleware chain.
func NewRouter(carts CartService, orders OrderService, checkout CheckoutService, jwtSecret []byte, requestTimeout time.Duration) chi.Router {
	cartHandler := NewCartHandler(carts, requestTimeout)
	ordersHandler := NewOrdersHandler(orders, checkout, requestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(AuthMiddleware(jwtSecret))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, Envelope{Success: true, Message: "ok"})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartHandler.GetCart)
		r.Post("/add", cartHandler.AddItem)
		r.Put("/update/{itemID}", cartHandler.UpdateItem)
		r.Delete("/remove/{itemID}", cartHandler.RemoveItem)
		r.Delete("/clear", cartHandler.ClearCart)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", ordersHandler.PlaceOrder)
		r.Get("/", ordersHandler.ListAllOrders)
		r.Get("/myorders", ordersHandler.ListMyOrders)
		r.Get("/{id}", ordersHandler.GetOrder)
		r.Put("/{id}/pay", ordersHandler.PayOrder)
		r.Put("/{id}/deliver", ordersHandler.DeliverOrder)
		r.Put("/{id}/status", ordersHandler.SetOrderStatus)
		r.Put("/{id}/cancel", ordersHandler.CancelOrder)
		r.Put("/{id}/edit", ordersHandler.EditOrderAddress)
	})

	return r
}
