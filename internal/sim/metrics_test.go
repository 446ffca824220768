package sim

import (
	"testing"

	"citytwin/internal/model"
)

func TestAnalyzeCityState(t *testing.T) {
	vehicles := []model.Vehicle{
		{ID: "v1", Status: model.StatusMoving, Capacity: 10},
		{ID: "v2", Status: model.StatusMoving, Capacity: 10},
		{ID: "v3", Status: model.StatusIdle, Capacity: 10},
		{ID: "v4", Status: model.StatusIdle, Capacity: 10},
	}
	points := []model.DeliveryPoint{{ID: "p1", Demand: 20}}

	got := AnalyzeCityState(vehicles, points)

	// 2 of 4 moving: traffic 50, ecology 100 - 50*0.6 = 70.
	if got.TrafficLoad != 50 {
		t.Fatalf("traffic_load = %f, want 50", got.TrafficLoad)
	}
	if got.Ecology != 70 {
		t.Fatalf("ecology = %f, want 70", got.Ecology)
	}
	// Full coverage (40 >= 20) plus half the fleet idle: 70 + 15 = 85.
	if got.SocialScore != 85 {
		t.Fatalf("social_score = %f, want 85", got.SocialScore)
	}
}

func TestAnalyzeCityStateEmpty(t *testing.T) {
	got := AnalyzeCityState(nil, nil)
	if got.TrafficLoad != 0 {
		t.Fatalf("traffic_load = %f, want 0", got.TrafficLoad)
	}
	if got.Ecology != 100 {
		t.Fatalf("ecology = %f, want 100", got.Ecology)
	}
	// Zero demand counts as covered; no fleet means no idle bonus.
	if got.SocialScore != 70 {
		t.Fatalf("social_score = %f, want 70", got.SocialScore)
	}
}

func TestAnalyzeCityStateClampsNegativeInput(t *testing.T) {
	vehicles := []model.Vehicle{{ID: "v1", Status: model.StatusIdle, Capacity: -5}}
	points := []model.DeliveryPoint{{ID: "p1", Demand: -10}}

	got := AnalyzeCityState(vehicles, points)
	if got.TrafficLoad != 0 || got.Ecology != 100 {
		t.Fatalf("unexpected metrics with clamped input: %+v", got)
	}
	if got.SocialScore < 0 || got.SocialScore > 100 {
		t.Fatalf("social_score out of range: %f", got.SocialScore)
	}
}

func TestAnalyzeCityStateUndercoverage(t *testing.T) {
	vehicles := []model.Vehicle{{ID: "v1", Status: model.StatusMoving, Capacity: 10}}
	points := []model.DeliveryPoint{{ID: "p1", Demand: 40}}

	got := AnalyzeCityState(vehicles, points)
	// Coverage 0.25, no idle vehicles: 0.25*70 = 17.5.
	if got.SocialScore != 17.5 {
		t.Fatalf("social_score = %f, want 17.5", got.SocialScore)
	}
	if got.TrafficLoad != 100 {
		t.Fatalf("traffic_load = %f, want 100", got.TrafficLoad)
	}
	// Traffic at 100 drags ecology to 100 - 60 = 40.
	if got.Ecology != 40 {
		t.Fatalf("ecology = %f, want 40", got.Ecology)
	}
}
