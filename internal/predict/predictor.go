// Package predict scores expected traffic for a candidate route. The scorer
// is heuristic: time-of-day and the provider's live congestion score drive a
// banded delay estimate. The Predictor interface leaves room for an
// ML-backed implementation without touching callers.
package predict

import "math"

// RouteFeatures describe one candidate route at prediction time.
type RouteFeatures struct {
	DistanceKM          float64
	DurationMin         float64
	Hour                int // 0-23
	DayOfWeek           int // 0=Monday .. 6=Sunday
	CurrentTrafficScore float64 // 0-10 provider congestion score
}

// Prediction is the structured traffic forecast for a route.
type Prediction struct {
	PredictedLevel        string  `json:"predicted_level"` // low, medium, high, severe
	Confidence            float64 `json:"confidence"`
	EstimatedDelayMinutes float64 `json:"estimated_delay_minutes"`
}

// Predictor scores traffic for a route.
type Predictor interface {
	PredictTraffic(f RouteFeatures) Prediction
}

// Heuristic is the rule-based predictor: rush hour raises the congestion
// score, weekends lower it, and the adjusted score maps to a delay band.
type Heuristic struct{}

// NewHeuristic returns the rule-based predictor.
func NewHeuristic() Heuristic { return Heuristic{} }

func (Heuristic) PredictTraffic(f RouteFeatures) Prediction {
	score := f.CurrentTrafficScore

	rushHour := (f.Hour >= 7 && f.Hour <= 9) || (f.Hour >= 17 && f.Hour <= 19)
	weekend := f.DayOfWeek >= 5

	if rushHour && !weekend {
		score += 2.0
	} else if weekend {
		score -= 1.0
	}
	score = math.Max(0, math.Min(10, score))

	var level string
	var delayFactor float64
	switch {
	case score < 3:
		level, delayFactor = "low", 0.05
	case score < 6:
		level, delayFactor = "medium", 0.15
	case score < 8:
		level, delayFactor = "high", 0.30
	default:
		level, delayFactor = "severe", 0.50
	}

	return Prediction{
		PredictedLevel:        level,
		Confidence:            0.6,
		EstimatedDelayMinutes: math.Round(f.DurationMin*delayFactor*10) / 10,
	}
}
