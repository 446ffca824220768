package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"citytwin/internal/model"
)

func TestMemoryVehicleCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	v := model.Vehicle{
		ID:              "v1",
		Name:            "Truck 1",
		Capacity:        25,
		CurrentLocation: model.Location{Lat: 55.75, Lng: 37.61},
		Status:          model.StatusIdle,
		Route:           []model.Location{{Lat: 55.75, Lng: 37.61}, {Lat: 55.76, Lng: 37.63}},
	}
	if err := m.CreateVehicle(ctx, v); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.CreateVehicle(ctx, v); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate create: err = %v, want ErrConflict", err)
	}

	got, err := m.GetVehicle(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Truck 1" || len(got.Route) != 2 {
		t.Fatalf("get returned %+v", got)
	}

	// Mutating the returned copy must not touch the stored vehicle.
	got.Route[0] = model.Location{Lat: 0, Lng: 0}
	again, _ := m.GetVehicle(ctx, "v1")
	if again.Route[0].Lat != 55.75 {
		t.Fatal("store leaked mutable route slice")
	}

	v.Name = "Truck 1 renamed"
	if err := m.UpdateVehicle(ctx, v); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := m.UpdateVehicle(ctx, model.Vehicle{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: err = %v, want ErrNotFound", err)
	}

	list, err := m.ListVehicles(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}

	if err := m.DeleteVehicle(ctx, "v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.GetVehicle(ctx, "v1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemorySimulationsAreWriteOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	res := model.SimulationResponse{SimulationID: "s1", TotalTimeHours: 3}
	if err := m.SaveSimulation(ctx, res); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.SaveSimulation(ctx, res); !errors.Is(err, ErrConflict) {
		t.Fatalf("second save: err = %v, want ErrConflict", err)
	}

	got, err := m.GetSimulation(ctx, "s1")
	if err != nil || got.TotalTimeHours != 3 {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if err := m.DeleteSimulation(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteSimulation(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryScenarioListsAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sc := model.Scenario{
		ID:               "sc1",
		Name:             "Morning",
		VehicleIDs:       []string{"v1", "v2"},
		DeliveryPointIDs: []string{"p1"},
		StartTime:        time.Now().UTC(),
		DurationHours:    4,
	}
	if err := m.CreateScenario(ctx, sc); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := m.GetScenario(ctx, "sc1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.VehicleIDs[0] = "poisoned"

	again, _ := m.GetScenario(ctx, "sc1")
	if again.VehicleIDs[0] != "v1" {
		t.Fatal("store leaked mutable vehicle id slice")
	}
}

func TestMemoryFindUserByLogin(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u := model.User{ID: "u1", Username: "Planner", Email: "planner@city.example", CreatedAt: time.Now().UTC()}
	if err := m.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.CreateUser(ctx, model.User{ID: "u2", Username: "planner", Email: "other@city.example"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username: err = %v, want ErrConflict", err)
	}

	byName, err := m.FindUserByLogin(ctx, "PLANNER")
	if err != nil || byName.ID != "u1" {
		t.Fatalf("by username = %+v, %v", byName, err)
	}
	byEmail, err := m.FindUserByLogin(ctx, "Planner@City.Example")
	if err != nil || byEmail.ID != "u1" {
		t.Fatalf("by email = %+v, %v", byEmail, err)
	}
	if _, err := m.FindUserByLogin(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing login: err = %v, want ErrNotFound", err)
	}
}
