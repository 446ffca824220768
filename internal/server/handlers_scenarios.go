package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.store.ListScenarios(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "scenarios not found")
		return
	}
	s.writeJSON(w, http.StatusOK, scenarios)
}

// handleCreateScenario godoc
// @Title Create scenario
// @Description Stores a named simulation setup referencing existing fleet and demand.
// @Resource Scenarios
// @Accept json
// @Produce json
// @Param payload body ScenarioRequest true "Scenario payload"
// @Success 201 {object} model.Scenario
// @Route /api/scenarios [post]
func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}
	scenario := req.toModel(uuid.New().String(), time.Now().UTC())
	if err := s.store.CreateScenario(r.Context(), scenario); err != nil {
		s.writeStoreError(w, r, err, "scenario not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, scenario)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
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
	s.writeJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "scenarioID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing scenario id", nil)
		return
	}
	var req ScenarioRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	existing, err := s.store.GetScenario(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "scenario not found")
		return
	}

	scenario := req.toModel(id, existing.CreatedAt)
	scenario.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateScenario(r.Context(), scenario); err != nil {
		s.writeStoreError(w, r, err, "scenario not found")
		return
	}
	s.writeJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "scenarioID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing scenario id", nil)
		return
	}
	if err := s.store.DeleteScenario(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "scenario not found")
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
