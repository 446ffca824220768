// Package store is the persistence boundary. The Store interface is injected
// into the HTTP layer; Memory backs tests and DB-less runs, Postgres backs
// production.
package store

import (
	"context"
	"errors"

	"citytwin/internal/model"
)

var (
	// ErrNotFound is returned for id-based lookups that miss.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated,
	// including rewrites of write-once simulation results.
	ErrConflict = errors.New("already exists")
)

// Store is the persistence interface used by the API server. Simulation
// results are write-once per id and safe to read concurrently with writes.
type Store interface {
	// Vehicles
	ListVehicles(ctx context.Context) ([]model.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (model.Vehicle, error)
	CreateVehicle(ctx context.Context, v model.Vehicle) error
	UpdateVehicle(ctx context.Context, v model.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error

	// Delivery points
	ListDeliveryPoints(ctx context.Context) ([]model.DeliveryPoint, error)
	GetDeliveryPoint(ctx context.Context, id string) (model.DeliveryPoint, error)
	CreateDeliveryPoint(ctx context.Context, p model.DeliveryPoint) error
	UpdateDeliveryPoint(ctx context.Context, p model.DeliveryPoint) error
	DeleteDeliveryPoint(ctx context.Context, id string) error

	// Scenarios
	ListScenarios(ctx context.Context) ([]model.Scenario, error)
	GetScenario(ctx context.Context, id string) (model.Scenario, error)
	CreateScenario(ctx context.Context, sc model.Scenario) error
	UpdateScenario(ctx context.Context, sc model.Scenario) error
	DeleteScenario(ctx context.Context, id string) error

	// Simulation results
	SaveSimulation(ctx context.Context, res model.SimulationResponse) error
	GetSimulation(ctx context.Context, id string) (model.SimulationResponse, error)
	ListSimulations(ctx context.Context) ([]model.SimulationResponse, error)
	DeleteSimulation(ctx context.Context, id string) error

	// Users
	CreateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, id string) (model.User, error)
	FindUserByLogin(ctx context.Context, login string) (model.User, error)

	Close()
}
