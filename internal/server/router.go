package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.handleRegister)
		api.Post("/auth/login", s.handleLogin)
		api.With(s.authMiddleware).Get("/auth/me", s.handleMe)

		api.Route("/objects", func(o chi.Router) {
			o.Get("/map/all", s.handleMapAll)

			o.Get("/vehicles", s.handleListVehicles)
			o.Post("/vehicles", s.handleCreateVehicle)
			o.Get("/vehicles/{vehicleID}", s.handleGetVehicle)
			o.Put("/vehicles/{vehicleID}", s.handleUpdateVehicle)
			o.Delete("/vehicles/{vehicleID}", s.handleDeleteVehicle)

			o.Get("/delivery-points", s.handleListDeliveryPoints)
			o.Post("/delivery-points", s.handleCreateDeliveryPoint)
			o.Get("/delivery-points/{pointID}", s.handleGetDeliveryPoint)
			o.Put("/delivery-points/{pointID}", s.handleUpdateDeliveryPoint)
			o.Delete("/delivery-points/{pointID}", s.handleDeleteDeliveryPoint)
		})

		api.Route("/scenarios", func(sc chi.Router) {
			sc.Get("/", s.handleListScenarios)
			sc.Post("/", s.handleCreateScenario)
			sc.Get("/{scenarioID}", s.handleGetScenario)
			sc.Put("/{scenarioID}", s.handleUpdateScenario)
			sc.Delete("/{scenarioID}", s.handleDeleteScenario)
		})

		api.Route("/simulation", func(sim chi.Router) {
			sim.Get("/impact", s.handleObjectImpact)
			sim.Get("/analyze", s.handleAnalyzeCity)
			sim.Post("/run", s.handleRunSimulation)
			sim.Post("/run-scenario/{scenarioID}", s.handleRunScenario)
			sim.Get("/results", s.handleListSimulations)
			sim.Get("/results/{simulationID}", s.handleGetSimulation)
			sim.Delete("/results/{simulationID}", s.handleDeleteSimulation)
		})

		api.Post("/routes/optimize", s.handleOptimizeRoute)

		api.Route("/geo", func(g chi.Router) {
			g.Post("/isochrone", s.handleIsochrone)
			g.Post("/polygon-insights", s.handlePolygonInsights)
		})

		api.Post("/ai/predict", s.handleAIPredict)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", duration).
			Msg("http request")
	})
}
