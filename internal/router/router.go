package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/FACorreiaa/travelmate-api/internal/api/auth"
	"github.com/FACorreiaa/travelmate-api/internal/api/chatbot"
	"github.com/FACorreiaa/travelmate-api/internal/api/packing"
	"github.com/FACorreiaa/travelmate-api/internal/api/tips"
	"github.com/FACorreiaa/travelmate-api/internal/api/trip"
	"github.com/FACorreiaa/travelmate-api/internal/api/weather"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            auth.Handler
	TripHandler            trip.Handler
	WeatherHandler         weather.Handler
	PackingHandler         packing.Handler
	TipsHandler            tips.Handler
	ChatHandler            chatbot.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong")) //nolint:errcheck
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {

		// --- Public Auth Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", cfg.TripHandler.ListTrips)
				r.Post("/", cfg.TripHandler.CreateTrip)

				r.Route("/{tripID}", func(r chi.Router) {
					r.Get("/", cfg.TripHandler.GetTrip)
					r.Put("/", cfg.TripHandler.UpdateTrip)
					r.Delete("/", cfg.TripHandler.DeleteTrip)

					r.Get("/weather", cfg.WeatherHandler.GetTripWeather)

					r.Get("/packing", cfg.PackingHandler.GetPackingList)
					r.Post("/packing/generate", cfg.PackingHandler.GeneratePackingList)
					r.Post("/packing/items", cfg.PackingHandler.AddCustomItem)

					r.Get("/tips", cfg.TipsHandler.GetTips)
					r.Post("/tips/generate", cfg.TipsHandler.GenerateTips)

					r.Get("/assistant", cfg.ChatHandler.GetHistory)
					r.Post("/assistant", cfg.ChatHandler.SendMessage)
				})
			})

			// Item routes are addressed by item ID alone; ownership is
			// enforced in the repository.
			r.Route("/packing/items/{itemID}", func(r chi.Router) {
				r.Put("/", cfg.PackingHandler.UpdateItem)
				r.Delete("/", cfg.PackingHandler.DeleteItem)
				r.Post("/toggle", cfg.PackingHandler.ToggleItem)
			})
		})
	})

	return r
}
