// Package model holds the domain types shared by the store, the simulation
// engine and the HTTP layer.
package model

import "time"

// Location is an immutable WGS84-like coordinate pair in degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VehicleStatus enumerates the lifecycle states of a vehicle during a
// simulation run: idle -> moving -> completed, with loading/unloading as
// auxiliary states reported by external systems.
type VehicleStatus string

const (
	StatusIdle      VehicleStatus = "idle"
	StatusMoving    VehicleStatus = "moving"
	StatusLoading   VehicleStatus = "loading"
	StatusUnloading VehicleStatus = "unloading"
	StatusCompleted VehicleStatus = "completed"
)

// NormalizeStatus maps unrecognized status values to idle.
func NormalizeStatus(s string) VehicleStatus {
	switch VehicleStatus(s) {
	case StatusIdle, StatusMoving, StatusLoading, StatusUnloading, StatusCompleted:
		return VehicleStatus(s)
	default:
		return StatusIdle
	}
}

// Vehicle is a fleet unit. Route is fixed for the duration of one simulation
// run; only CurrentLocation and Status mutate while stepping.
type Vehicle struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Capacity        float64       `json:"capacity"`
	CurrentLocation Location      `json:"current_location"`
	Status          VehicleStatus `json:"status"`
	Route           []Location    `json:"route,omitempty"`
}

// Clone returns a deep copy so simulation runs never mutate stored vehicles.
func (v Vehicle) Clone() Vehicle {
	out := v
	if len(v.Route) > 0 {
		out.Route = make([]Location, len(v.Route))
		copy(out.Route, v.Route)
	}
	return out
}

// DeliveryPoint is a demand sink. TimeWindow values are advisory strings and
// are not validated.
type DeliveryPoint struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Location        Location `json:"location"`
	Demand          float64  `json:"demand"`
	TimeWindowStart string   `json:"time_window_start,omitempty"`
	TimeWindowEnd   string   `json:"time_window_end,omitempty"`
}

// Scenario binds a named subset of the fleet and demand to a time window.
type Scenario struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	VehicleIDs       []string  `json:"vehicle_ids"`
	DeliveryPointIDs []string  `json:"delivery_point_ids"`
	StartTime        time.Time `json:"start_time"`
	DurationHours    int       `json:"duration_hours"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SimulationRequest is the validated input of one simulation run.
type SimulationRequest struct {
	Vehicles       []Vehicle       `json:"vehicles"`
	DeliveryPoints []DeliveryPoint `json:"delivery_points"`
	StartTime      time.Time       `json:"start_time"`
	DurationHours  int             `json:"duration_hours"`
}

// CityMetrics are the three aggregate indices, each clamped to [0,100].
type CityMetrics struct {
	Ecology     float64 `json:"ecology"`
	TrafficLoad float64 `json:"traffic_load"`
	SocialScore float64 `json:"social_score"`
}

// StepMetrics is the fixed-shape per-tick metrics record.
type StepMetrics struct {
	Hour              int     `json:"hour"`
	TotalDistanceKM   float64 `json:"total_distance"`
	VehiclesMoving    int     `json:"vehicles_moving"`
	VehiclesCompleted int     `json:"vehicles_completed"`
	VehiclesIdle      int     `json:"vehicles_idle"`
	CityMetrics
}

// SimulationStep is the full fleet snapshot as of one simulated hour.
type SimulationStep struct {
	Timestamp time.Time   `json:"timestamp"`
	Vehicles  []Vehicle   `json:"vehicles"`
	Metrics   StepMetrics `json:"metrics"`
}

// SimulationResponse is the complete result of one run.
type SimulationResponse struct {
	SimulationID    string           `json:"simulation_id"`
	Steps           []SimulationStep `json:"steps"`
	TotalDistanceKM float64          `json:"total_distance"`
	TotalTimeHours  int              `json:"total_time"`
	Efficiency      float64          `json:"efficiency"`
}

// MapPoint is the unified map-object projection used by the frontend.
type MapPoint struct {
	ID         string         `json:"id"`
	Location   Location       `json:"location"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// User is a registered account. PasswordHash carries the encoded
// pbkdf2_sha256 record, never the raw password.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
