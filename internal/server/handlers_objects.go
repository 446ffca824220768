package server

import (
	"net/http"

	"github.com/google/uuid"

	"citytwin/internal/model"
)

// handleMapAll godoc
// @Title All map objects
// @Description Returns vehicles and delivery points as a unified point list.
// @Resource Objects
// @Produce json
// @Success 200 {array} model.MapPoint
// @Route /api/objects/map/all [get]
func (s *Server) handleMapAll(w http.ResponseWriter, r *http.Request) {
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

	out := make([]model.MapPoint, 0, len(vehicles)+len(points))
	for _, v := range vehicles {
		out = append(out, model.MapPoint{
			ID:       v.ID,
			Location: v.CurrentLocation,
			Name:     v.Name,
			Type:     "vehicle",
			Properties: map[string]any{
				"status":    string(v.Status),
				"capacity":  v.Capacity,
				"route_len": len(v.Route),
			},
		})
	}
	for _, p := range points {
		out = append(out, model.MapPoint{
			ID:       p.ID,
			Location: p.Location,
			Name:     p.Name,
			Type:     "delivery_point",
			Properties: map[string]any{
				"demand":            p.Demand,
				"time_window_start": p.TimeWindowStart,
				"time_window_end":   p.TimeWindowEnd,
			},
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// Vehicles

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.store.ListVehicles(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "vehicles not found")
		return
	}
	s.writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req VehicleRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}
	vehicle := req.toModel(uuid.New().String())
	if err := s.store.CreateVehicle(r.Context(), vehicle); err != nil {
		s.writeStoreError(w, r, err, "vehicle not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, vehicle)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "vehicleID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing vehicle id", nil)
		return
	}
	vehicle, err := s.store.GetVehicle(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "vehicle not found")
		return
	}
	s.writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "vehicleID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing vehicle id", nil)
		return
	}
	var req VehicleRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}
	vehicle := req.toModel(id)
	if err := s.store.UpdateVehicle(r.Context(), vehicle); err != nil {
		s.writeStoreError(w, r, err, "vehicle not found")
		return
	}
	s.writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "vehicleID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing vehicle id", nil)
		return
	}
	if err := s.store.DeleteVehicle(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "vehicle not found")
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

// Delivery points

func (s *Server) handleListDeliveryPoints(w http.ResponseWriter, r *http.Request) {
	points, err := s.store.ListDeliveryPoints(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "delivery points not found")
		return
	}
	s.writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleCreateDeliveryPoint(w http.ResponseWriter, r *http.Request) {
	var req DeliveryPointRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}
	point := req.toModel(uuid.New().String())
	if err := s.store.CreateDeliveryPoint(r.Context(), point); err != nil {
		s.writeStoreError(w, r, err, "delivery point not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, point)
}

func (s *Server) handleGetDeliveryPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "pointID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing delivery point id", nil)
		return
	}
	point, err := s.store.GetDeliveryPoint(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "delivery point not found")
		return
	}
	s.writeJSON(w, http.StatusOK, point)
}

func (s *Server) handleUpdateDeliveryPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "pointID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing delivery point id", nil)
		return
	}
	var req DeliveryPointRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}
	point := req.toModel(id)
	if err := s.store.UpdateDeliveryPoint(r.Context(), point); err != nil {
		s.writeStoreError(w, r, err, "delivery point not found")
		return
	}
	s.writeJSON(w, http.StatusOK, point)
}

func (s *Server) handleDeleteDeliveryPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "pointID")
	if !ok {
		s.writeError(w, http.StatusBadRequest, "missing delivery point id", nil)
		return
	}
	if err := s.store.DeleteDeliveryPoint(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "delivery point not found")
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
