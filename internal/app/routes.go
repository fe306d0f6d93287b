package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/openapi.json", app.GetOpenAPI)

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/search", app.SearchRooms)
		r.Post("/month-prices", app.GetMonthPrices)
		r.Post("/pricing", app.GetRoomPricing)
		r.Post("/availability", app.CheckRoomAvailability)
	})

	// signed by the payment provider, no visitor session involved
	r.Post("/webhook", app.StripeWebhookHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(app.ensureVisitorSession)

		r.Post("/booking", app.SetBooking)
		r.Post("/cart/items/remove", app.RemoveCartItem)
		r.Get("/checkout", app.ViewCheckout)
		r.Post("/checkout", app.PlaceOrder)
	})

	r.With(app.requireAdmin).Route("/admin/orders/{orderID}", func(r chi.Router) {
		r.Get("/", app.GetOrder)
		r.Post("/complete", app.CompleteOrder)
		r.Post("/reservation", app.SynthesizeReservation)
	})

	return r
}
