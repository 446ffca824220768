package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"citytwin/internal/geo"
	"citytwin/internal/model"
)

// ErrInvalidArgument is returned for malformed simulation input.
var ErrInvalidArgument = errors.New("invalid argument")

// Run steps the request's fleet along its pre-assigned routes for
// DurationHours hourly ticks. Input vehicles are deep-copied on entry and are
// never mutated, so concurrent runs over the same stored fleet are safe.
func Run(req model.SimulationRequest) (model.SimulationResponse, error) {
	if req.DurationHours <= 0 {
		return model.SimulationResponse{}, fmt.Errorf("%w: duration_hours must be > 0, got %d",
			ErrInvalidArgument, req.DurationHours)
	}

	vehicles := make([]model.Vehicle, len(req.Vehicles))
	lastIdx := make([]int, len(req.Vehicles))
	for i, v := range req.Vehicles {
		vehicles[i] = v.Clone()
		vehicles[i].Status = model.NormalizeStatus(string(v.Status))
		lastIdx[i] = -1
	}

	steps := make([]model.SimulationStep, 0, req.DurationHours)
	totalDistance := 0.0

	for hour := 0; hour < req.DurationHours; hour++ {
		for i := range vehicles {
			v := &vehicles[i]
			if len(v.Route) == 0 {
				// A vehicle cannot be moving with nowhere to go.
				if v.Status == model.StatusMoving {
					v.Status = model.StatusIdle
				}
				continue
			}

			idx := routeIndex(hour, req.DurationHours, len(v.Route))
			if idx != lastIdx[i] {
				if lastIdx[i] >= 0 {
					totalDistance += geo.DistanceKM(v.Route[lastIdx[i]], v.Route[idx])
				}
				v.CurrentLocation = v.Route[idx]
				if idx < len(v.Route)-1 {
					v.Status = model.StatusMoving
				} else {
					v.Status = model.StatusCompleted
				}
				lastIdx[i] = idx
			}
		}

		snapshot := make([]model.Vehicle, len(vehicles))
		moving, completed, idle := 0, 0, 0
		for i, v := range vehicles {
			snapshot[i] = v.Clone()
			switch v.Status {
			case model.StatusMoving:
				moving++
			case model.StatusCompleted:
				completed++
			case model.StatusIdle:
				idle++
			}
		}

		steps = append(steps, model.SimulationStep{
			Timestamp: req.StartTime.Add(time.Duration(hour) * time.Hour),
			Vehicles:  snapshot,
			Metrics: model.StepMetrics{
				Hour:              hour,
				TotalDistanceKM:   round2(totalDistance),
				VehiclesMoving:    moving,
				VehiclesCompleted: completed,
				VehiclesIdle:      idle,
				CityMetrics:       AnalyzeCityState(snapshot, req.DeliveryPoints),
			},
		})
	}

	return model.SimulationResponse{
		SimulationID:    uuid.New().String(),
		Steps:           steps,
		TotalDistanceKM: round2(totalDistance),
		TotalTimeHours:  req.DurationHours,
		Efficiency:      round2(efficiency(req.Vehicles, req.DeliveryPoints)),
	}, nil
}

// routeIndex selects the waypoint for a given hour. It is non-decreasing in
// hour and reaches the last waypoint exactly at hour == durationHours-1 (or
// immediately when the run is a single tick).
func routeIndex(hour, durationHours, routeLen int) int {
	if routeLen <= 1 {
		return 0
	}
	if durationHours <= 1 {
		return routeLen - 1
	}
	idx := hour * (routeLen - 1) / (durationHours - 1)
	if idx > routeLen-1 {
		idx = routeLen - 1
	}
	return idx
}

// efficiency is the share of total demand the fleet capacity can serve,
// as a percentage capped at 100.
func efficiency(vehicles []model.Vehicle, points []model.DeliveryPoint) float64 {
	totalCapacity := 0.0
	for _, v := range vehicles {
		if v.Capacity > 0 {
			totalCapacity += v.Capacity
		}
	}
	totalDemand := 0.0
	for _, p := range points {
		if p.Demand > 0 {
			totalDemand += p.Demand
		}
	}

	switch {
	case totalDemand > 0:
		ratio := totalCapacity / totalDemand
		if ratio > 1 {
			ratio = 1
		}
		return ratio * 100
	case totalCapacity > 0:
		return 100
	default:
		return 0
	}
}
