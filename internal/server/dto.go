package server

import (
	"time"

	"citytwin/internal/model"
	"citytwin/internal/providers"
)

// Auth

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=32,alphanumunicode"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	User        model.User `json:"user"`
}

// Map objects

type LocationPayload struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

func (p LocationPayload) toModel() model.Location {
	return model.Location{Lat: p.Lat, Lng: p.Lng}
}

type VehicleRequest struct {
	ID              string            `json:"id" validate:"omitempty,max=64"`
	Name            string            `json:"name" validate:"required,min=1,max=120"`
	Capacity        float64           `json:"capacity" validate:"gte=0"`
	CurrentLocation LocationPayload   `json:"current_location" validate:"required"`
	Status          string            `json:"status" validate:"omitempty,oneof=idle moving loading unloading completed"`
	Route           []LocationPayload `json:"route" validate:"omitempty,dive"`
}

func (req VehicleRequest) toModel(id string) model.Vehicle {
	route := make([]model.Location, 0, len(req.Route))
	for _, p := range req.Route {
		route = append(route, p.toModel())
	}
	return model.Vehicle{
		ID:              id,
		Name:            req.Name,
		Capacity:        req.Capacity,
		CurrentLocation: req.CurrentLocation.toModel(),
		Status:          model.NormalizeStatus(req.Status),
		Route:           route,
	}
}

type DeliveryPointRequest struct {
	ID              string          `json:"id" validate:"omitempty,max=64"`
	Name            string          `json:"name" validate:"required,min=1,max=120"`
	Location        LocationPayload `json:"location" validate:"required"`
	Demand          float64         `json:"demand" validate:"gte=0"`
	TimeWindowStart string          `json:"time_window_start" validate:"omitempty,max=32"`
	TimeWindowEnd   string          `json:"time_window_end" validate:"omitempty,max=32"`
}

func (req DeliveryPointRequest) toModel(id string) model.DeliveryPoint {
	return model.DeliveryPoint{
		ID:              id,
		Name:            req.Name,
		Location:        req.Location.toModel(),
		Demand:          req.Demand,
		TimeWindowStart: req.TimeWindowStart,
		TimeWindowEnd:   req.TimeWindowEnd,
	}
}

// Scenarios

type ScenarioRequest struct {
	Name             string    `json:"name" validate:"required,min=1,max=120"`
	Description      string    `json:"description" validate:"omitempty,max=2000"`
	VehicleIDs       []string  `json:"vehicle_ids" validate:"omitempty,dive,required"`
	DeliveryPointIDs []string  `json:"delivery_point_ids" validate:"omitempty,dive,required"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	DurationHours    int       `json:"duration_hours" validate:"required,gte=1,lte=168"`
}

func (req ScenarioRequest) toModel(id string, createdAt time.Time) model.Scenario {
	return model.Scenario{
		ID:               id,
		Name:             req.Name,
		Description:      req.Description,
		VehicleIDs:       append([]string(nil), req.VehicleIDs...),
		DeliveryPointIDs: append([]string(nil), req.DeliveryPointIDs...),
		StartTime:        req.StartTime,
		DurationHours:    req.DurationHours,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

// Simulation

type SimulationRunRequest struct {
	Vehicles       []VehicleRequest       `json:"vehicles" validate:"required,min=1,dive"`
	DeliveryPoints []DeliveryPointRequest `json:"delivery_points" validate:"omitempty,dive"`
	StartTime      time.Time              `json:"start_time" validate:"required"`
	DurationHours  int                    `json:"duration_hours" validate:"required,gte=1,lte=168"`
}

// Routing

type OptimizeRouteRequest struct {
	Origin       LocationPayload `json:"origin" validate:"required"`
	Destination  LocationPayload `json:"destination" validate:"required"`
	Alternatives int             `json:"alternatives" validate:"omitempty,gte=0,lte=5"`
	DepartAt     *time.Time      `json:"depart_at"`
	WithAdvice   bool            `json:"with_advice"`
}

type OptimizeRouteResponse struct {
	Routes         []providers.Route `json:"routes"`
	BestRouteIndex int               `json:"best_route_index"`
	Fallback       bool              `json:"fallback"`
	Prediction     any               `json:"prediction,omitempty"`
	Recommendation string            `json:"recommendation,omitempty"`
}

// Geo

type IsochroneRequest struct {
	Lat        float64  `json:"lat" validate:"latitude"`
	Lng        float64  `json:"lng" validate:"longitude"`
	Profile    string   `json:"profile" validate:"omitempty,oneof=walking cycling driving"`
	Minutes    []int    `json:"minutes" validate:"omitempty,max=10,dive,gte=1,lte=60"`
	Polygons   *bool    `json:"polygons"`
	Denoise    float64  `json:"denoise" validate:"gte=0,lte=1"`
	Generalize *float64 `json:"generalize"`
}

type PolygonInsightsRequest struct {
	Polygon       [][]float64 `json:"polygon" validate:"required,min=3,dive,len=2"`
	Profile       string      `json:"profile" validate:"omitempty,oneof=walking cycling driving"`
	AccessMinutes int         `json:"access_minutes" validate:"omitempty,gte=1,lte=60"`
}

// AI

type AIPredictRequest struct {
	Prompt  string                  `json:"prompt" validate:"required,min=1,max=4000"`
	Context map[string]any          `json:"context"`
	History []providers.ChatMessage `json:"history" validate:"omitempty,max=50,dive"`
}

type AIPredictResponse struct {
	Answer   string `json:"answer"`
	Model    string `json:"model"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
}

// Health

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Env       string `json:"env"`
	UptimeSec int64  `json:"uptime_sec"`
	Store     string `json:"store"`
}
