// Package sim is the delivery simulation core: the hour-stepped engine, the
// city metrics aggregator and the object impact estimator. Everything here is
// pure over validated input; persistence and transport live elsewhere.
package sim

import (
	"math"

	"citytwin/internal/model"
)

// EcologyDamping controls how strongly traffic load degrades the ecology
// index. The value is a product-tuned constant, not a physical quantity.
const EcologyDamping = 0.6

// AnalyzeCityState computes the three aggregate city indices from the current
// fleet and demand state. Pure and deterministic; negative capacity/demand
// inputs clamp to zero.
func AnalyzeCityState(vehicles []model.Vehicle, points []model.DeliveryPoint) model.CityMetrics {
	total := len(vehicles)
	moving := 0
	idle := 0
	totalCapacity := 0.0
	for _, v := range vehicles {
		switch v.Status {
		case model.StatusMoving:
			moving++
		case model.StatusIdle:
			idle++
		}
		totalCapacity += math.Max(0, v.Capacity)
	}

	totalDemand := 0.0
	for _, p := range points {
		totalDemand += math.Max(0, p.Demand)
	}

	coverage := 1.0
	if totalDemand > 0 {
		coverage = math.Min(totalCapacity/totalDemand, 1.0)
	}

	trafficLoad := 0.0
	idleShare := 0.0
	if total > 0 {
		trafficLoad = float64(moving) / float64(total) * 100
		idleShare = float64(idle) / float64(total)
	}

	ecology := math.Max(0, 100-trafficLoad*EcologyDamping)
	social := math.Min(100, coverage*70+idleShare*30)

	return model.CityMetrics{
		Ecology:     round2(clamp(ecology, 0, 100)),
		TrafficLoad: round2(clamp(trafficLoad, 0, 100)),
		SocialScore: round2(clamp(social, 0, 100)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
