package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"citytwin/internal/geo"
	"citytwin/internal/model"
)

var (
	ptA = model.Location{Lat: 55.7500, Lng: 37.6000}
	ptB = model.Location{Lat: 55.7600, Lng: 37.6200}
	ptC = model.Location{Lat: 55.7700, Lng: 37.6400}
)

func threeHourRequest() model.SimulationRequest {
	return model.SimulationRequest{
		Vehicles: []model.Vehicle{{
			ID:              "v1",
			Name:            "Truck 1",
			Capacity:        40,
			CurrentLocation: ptA,
			Status:          model.StatusIdle,
			Route:           []model.Location{ptA, ptB, ptC},
		}},
		DeliveryPoints: []model.DeliveryPoint{{
			ID: "p1", Name: "Point 1", Location: ptC, Demand: 20,
		}},
		StartTime:     time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		DurationHours: 3,
	}
}

func TestRunThreeWaypointRoute(t *testing.T) {
	req := threeHourRequest()
	res, err := Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(res.Steps))
	}
	if res.TotalTimeHours != 3 {
		t.Fatalf("total_time = %d, want 3", res.TotalTimeHours)
	}
	if res.SimulationID == "" {
		t.Fatal("simulation id is empty")
	}

	// Hour 0 places the vehicle at the route start without accruing distance.
	s0 := res.Steps[0]
	if s0.Vehicles[0].CurrentLocation != ptA {
		t.Fatalf("hour 0 location = %+v, want route start", s0.Vehicles[0].CurrentLocation)
	}
	if s0.Vehicles[0].Status != model.StatusMoving {
		t.Fatalf("hour 0 status = %s, want moving", s0.Vehicles[0].Status)
	}
	if s0.Metrics.TotalDistanceKM != 0 {
		t.Fatalf("hour 0 distance = %f, want 0", s0.Metrics.TotalDistanceKM)
	}
	if s0.Metrics.Hour != 0 {
		t.Fatalf("hour 0 metrics hour = %d", s0.Metrics.Hour)
	}
	if !s0.Timestamp.Equal(req.StartTime) {
		t.Fatalf("hour 0 timestamp = %v", s0.Timestamp)
	}

	// The last hour reaches the final waypoint and completes the vehicle.
	s2 := res.Steps[2]
	if s2.Vehicles[0].CurrentLocation != ptC {
		t.Fatalf("hour 2 location = %+v, want route end", s2.Vehicles[0].CurrentLocation)
	}
	if s2.Vehicles[0].Status != model.StatusCompleted {
		t.Fatalf("hour 2 status = %s, want completed", s2.Vehicles[0].Status)
	}
	if !s2.Timestamp.Equal(req.StartTime.Add(2 * time.Hour)) {
		t.Fatalf("hour 2 timestamp = %v", s2.Timestamp)
	}

	wantDistance := geo.DistanceKM(ptA, ptB) + geo.DistanceKM(ptB, ptC)
	if math.Abs(res.TotalDistanceKM-wantDistance) > 0.02 {
		t.Fatalf("total distance = %f, want ~%f", res.TotalDistanceKM, wantDistance)
	}
	if s2.Metrics.VehiclesCompleted != 1 || s2.Metrics.VehiclesMoving != 0 {
		t.Fatalf("final counts = %+v", s2.Metrics)
	}

	// Capacity 40 against demand 20 is full coverage.
	if res.Efficiency != 100 {
		t.Fatalf("efficiency = %f, want 100", res.Efficiency)
	}
}

func TestRunSingleHourJumpsToRouteEnd(t *testing.T) {
	req := threeHourRequest()
	req.DurationHours = 1

	res, err := Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(res.Steps))
	}
	v := res.Steps[0].Vehicles[0]
	if v.CurrentLocation != ptC || v.Status != model.StatusCompleted {
		t.Fatalf("vehicle = %+v, want completed at route end", v)
	}
	// Initial placement is free even when it lands on the last waypoint.
	if res.TotalDistanceKM != 0 {
		t.Fatalf("distance = %f, want 0", res.TotalDistanceKM)
	}
}

func TestRunEmptyRouteDemotesMoving(t *testing.T) {
	req := model.SimulationRequest{
		Vehicles: []model.Vehicle{{
			ID: "v1", Name: "Truck 1", Capacity: 10,
			CurrentLocation: ptA,
			Status:          model.StatusMoving,
		}},
		StartTime:     time.Now(),
		DurationHours: 2,
	}
	res, err := Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, step := range res.Steps {
		if step.Vehicles[0].Status != model.StatusIdle {
			t.Fatalf("status = %s, want idle for routeless vehicle", step.Vehicles[0].Status)
		}
	}
	if res.TotalDistanceKM != 0 {
		t.Fatalf("distance = %f, want 0", res.TotalDistanceKM)
	}
}

func TestRunRejectsNonPositiveDuration(t *testing.T) {
	for _, hours := range []int{0, -3} {
		req := threeHourRequest()
		req.DurationHours = hours
		if _, err := Run(req); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("duration %d: err = %v, want ErrInvalidArgument", hours, err)
		}
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	req := threeHourRequest()
	before := req.Vehicles[0].Clone()

	if _, err := Run(req); err != nil {
		t.Fatalf("Run: %v", err)
	}

	after := req.Vehicles[0]
	if after.Status != before.Status || after.CurrentLocation != before.CurrentLocation {
		t.Fatalf("input vehicle mutated: %+v", after)
	}
	for i := range before.Route {
		if after.Route[i] != before.Route[i] {
			t.Fatal("input route mutated")
		}
	}
}

func TestRunIsDeterministicPerStep(t *testing.T) {
	req := threeHourRequest()
	a, err := Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.TotalDistanceKM != b.TotalDistanceKM || a.Efficiency != b.Efficiency {
		t.Fatal("identical requests produced different aggregates")
	}
	for i := range a.Steps {
		if a.Steps[i].Metrics != b.Steps[i].Metrics {
			t.Fatalf("step %d metrics differ between runs", i)
		}
	}
}

func TestRouteIndex(t *testing.T) {
	tests := []struct {
		hour, duration, routeLen, want int
	}{
		{0, 3, 3, 0},
		{1, 3, 3, 1},
		{2, 3, 3, 2},
		{0, 1, 5, 4},  // single tick jumps to the end
		{0, 4, 1, 0},  // single-point route stays put
		{0, 4, 0, 0},  // empty handled by caller, index stays 0
		{5, 6, 3, 2},  // last hour always reaches the end
		{3, 10, 4, 1}, // proportional progress
	}
	for _, tt := range tests {
		if got := routeIndex(tt.hour, tt.duration, tt.routeLen); got != tt.want {
			t.Errorf("routeIndex(%d,%d,%d) = %d, want %d",
				tt.hour, tt.duration, tt.routeLen, got, tt.want)
		}
	}
}
