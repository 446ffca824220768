package server

import (
	"errors"
	"net/http"
	"time"

	"citytwin/internal/model"
	"citytwin/internal/sim"
)

// handleObjectImpact godoc
// @Title Object impact estimate
// @Description Returns the projected city-metric deltas for building an object type.
// @Resource Simulation
// @Produce json
// @Param object_type query string true "Object category, Russian or English"
// @Success 200 {object} sim.ObjectImpact
// @Route /api/simulation/impact [get]
func (s *Server) handleObjectImpact(w http.ResponseWriter, r *http.Request) {
	objectType := r.URL.Query().Get("object_type")
	if objectType == "" {
		s.writeError(w, http.StatusBadRequest, "object_type query parameter is required", nil)
		return
	}

	impact, err := sim.LookupObjectImpact(objectType)
	if err != nil {
		if errors.Is(err, sim.ErrUnknownCategory) {
			s.writeError(w, http.StatusNotFound, "unknown object type", objectType)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, impact)
}

// handleAnalyzeCity godoc
// @Title City state analysis
// @Description Computes aggregate ecology, traffic and social indices over the stored fleet and demand.
// @Resource Simulation
// @Produce json
// @Success 200 {object} model.CityMetrics
// @Route /api/simulation/analyze [get]
func (s *Server) handleAnalyzeCity(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.store.ListVehicles(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "vehicles not found")
		return
	}
	points, err := s.store.ListDeliveryPoints(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "delivery points not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sim.AnalyzeCityState(vehicles, points))
}

// handleRunSimulation godoc
// @Title Run simulation
// @Description Runs an hour-stepped delivery simulation over the submitted fleet and demand.
// @Resource Simulation
// @Accept json
// @Produce json
// @Param payload body SimulationRunRequest true "Simulation input"
// @Success 200 {object} model.SimulationResponse
// @Route /api/simulation/run [post]
func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var req SimulationRunRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	vehicles := make([]model.Vehicle, 0, len(req.Vehicles))
	for _, v := range req.Vehicles {
		vehicles = append(vehicles, v.toModel(orNewID(v.ID)))
	}
	points := make([]model.DeliveryPoint, 0, len(req.DeliveryPoints))
	for _, p := range req.DeliveryPoints {
		points = append(points, p.toModel(orNewID(p.ID)))
	}

	s.runAndRespond(w, r, model.SimulationRequest{
		Vehicles:       vehicles,
		DeliveryPoints: points,
		StartTime:      req.StartTime,
		DurationHours:  req.DurationHours,
	})
}

// handleRunScenario godoc
// @Title Run stored scenario
// @Description Resolves a scenario's fleet and demand from the store and runs the simulation.
// @Resource Simulation
// @Produce json
// @Success 200 {object} model.SimulationResponse
// @Route /api/simulation/run-scenario/{scenarioID} [post]
func (s *Server) handleRunScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "scenarioID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing scenario id", nil)
		return
	}
	scenario, err := s.store.GetScenario(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "scenario not found")
		return
	}

	vehicles := make([]model.Vehicle, 0, len(scenario.VehicleIDs))
	for _, vid := range scenario.VehicleIDs {
		v, err := s.store.GetVehicle(r.Context(), vid)
		if err != nil {
			s.writeStoreError(w, r, err, "vehicle referenced by scenario not found")
			return
		}
		vehicles = append(vehicles, v)
	}
	points := make([]model.DeliveryPoint, 0, len(scenario.DeliveryPointIDs))
	for _, pid := range scenario.DeliveryPointIDs {
		p, err := s.store.GetDeliveryPoint(r.Context(), pid)
		if err != nil {
			s.writeStoreError(w, r, err, "delivery point referenced by scenario not found")
			return
		}
		points = append(points, p)
	}

	s.runAndRespond(w, r, model.SimulationRequest{
		Vehicles:       vehicles,
		DeliveryPoints: points,
		StartTime:      scenario.StartTime,
		DurationHours:  scenario.DurationHours,
	})
}

func (s *Server) runAndRespond(w http.ResponseWriter, r *http.Request, req model.SimulationRequest) {
	start := time.Now()
	result, err := sim.Run(req)
	if err != nil {
		observeSimulation("invalid", 0)
		if errors.Is(err, sim.ErrInvalidArgument) {
			s.writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		s.log.Error().Err(err).Msg("simulation run failed")
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	observeSimulation("ok", time.Since(start))

	if err := s.store.SaveSimulation(r.Context(), result); err != nil {
		// The run itself succeeded; losing the persisted copy is logged but
		// does not fail the request.
		s.log.Warn().Err(err).Str("simulation_id", result.SimulationID).Msg("saving simulation result failed")
	}

	s.log.Info().
		Str("simulation_id", result.SimulationID).
		Int("hours", req.DurationHours).
		Int("vehicles", len(req.Vehicles)).
		Float64("total_distance_km", result.TotalDistanceKM).
		Msg("simulation completed")
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.ListSimulations(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "simulations not found")
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "simulationID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing simulation id", nil)
		return
	}
	result, err := s.store.GetSimulation(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "simulation not found")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteSimulation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "simulationID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing simulation id", nil)
		return
	}
	if err := s.store.DeleteSimulation(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "simulation not found")
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
