package predict

import "testing"

func TestPredictTrafficRushHour(t *testing.T) {
	p := NewHeuristic()

	got := p.PredictTraffic(RouteFeatures{
		DistanceKM:          10,
		DurationMin:         30,
		Hour:                8, // weekday morning rush
		DayOfWeek:           1,
		CurrentTrafficScore: 4.5,
	})
	// 4.5 + 2 = 6.5 lands in the high band.
	if got.PredictedLevel != "high" {
		t.Fatalf("level = %s, want high", got.PredictedLevel)
	}
	if got.EstimatedDelayMinutes != 9 {
		t.Fatalf("delay = %f, want 9 (30 min * 0.30)", got.EstimatedDelayMinutes)
	}
	if got.Confidence != 0.6 {
		t.Fatalf("confidence = %f, want 0.6", got.Confidence)
	}
}

func TestPredictTrafficWeekendDiscount(t *testing.T) {
	p := NewHeuristic()

	got := p.PredictTraffic(RouteFeatures{
		DurationMin:         60,
		Hour:                8,
		DayOfWeek:           6, // Sunday, rush hour does not apply
		CurrentTrafficScore: 4.0,
	})
	// 4.0 - 1 = 3.0 is medium.
	if got.PredictedLevel != "medium" {
		t.Fatalf("level = %s, want medium", got.PredictedLevel)
	}
	if got.EstimatedDelayMinutes != 9 {
		t.Fatalf("delay = %f, want 9 (60 min * 0.15)", got.EstimatedDelayMinutes)
	}
}

func TestPredictTrafficClamps(t *testing.T) {
	p := NewHeuristic()

	low := p.PredictTraffic(RouteFeatures{Hour: 12, DayOfWeek: 5, CurrentTrafficScore: 0})
	if low.PredictedLevel != "low" {
		t.Fatalf("level = %s, want low for clamped-to-zero score", low.PredictedLevel)
	}

	severe := p.PredictTraffic(RouteFeatures{Hour: 18, DayOfWeek: 2, CurrentTrafficScore: 9.5})
	if severe.PredictedLevel != "severe" {
		t.Fatalf("level = %s, want severe for clamped-to-ten score", severe.PredictedLevel)
	}
}
