package sim

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownCategory is returned when a free-text object type does not
// resolve to a canonical category.
var ErrUnknownCategory = errors.New("unknown object category")

// ImpactDelta is the fixed effect a new city object has on the three indices,
// in percentage points.
type ImpactDelta struct {
	Ecology     float64 `json:"ecology"`
	TrafficLoad float64 `json:"traffic_load"`
	SocialScore float64 `json:"social_score"`
}

// ObjectImpact is the resolved estimate for one object category.
type ObjectImpact struct {
	ObjectType string      `json:"object_type"`
	Message    string      `json:"message"`
	Impact     ImpactDelta `json:"impact"`
}

var objectImpacts = map[string]ImpactDelta{
	"park":        {Ecology: 12, TrafficLoad: -4, SocialScore: 10},
	"school":      {Ecology: -2, TrafficLoad: 6, SocialScore: 12},
	"factory":     {Ecology: -20, TrafficLoad: 15, SocialScore: 5},
	"residential": {Ecology: -6, TrafficLoad: 10, SocialScore: 14},
	"bridge":      {Ecology: -3, TrafficLoad: -12, SocialScore: 7},
}

// English and Russian synonyms for the canonical categories.
var objectTypeAliases = map[string]string{
	"park":        "park",
	"парк":        "park",
	"school":      "school",
	"школа":       "school",
	"factory":     "factory",
	"завод":       "factory",
	"residential": "residential",
	"жилой":       "residential",
	"жилой_район": "residential",
	"bridge":      "bridge",
	"мост":        "bridge",
}

// LookupObjectImpact resolves a free-text category name (English or Russian)
// and returns its fixed impact deltas plus a human-readable message derived
// from the ecology delta sign.
func LookupObjectImpact(objectType string) (ObjectImpact, error) {
	canonical, ok := objectTypeAliases[strings.ToLower(strings.TrimSpace(objectType))]
	if !ok {
		return ObjectImpact{}, fmt.Errorf("%w: %q (supported: park/school/factory/residential/bridge "+
			"или парк/школа/завод/жилой_район/мост)", ErrUnknownCategory, objectType)
	}

	impact := objectImpacts[canonical]

	var message string
	switch {
	case impact.Ecology < 0:
		message = fmt.Sprintf("Если вы это построите, экология упадет на %.0f%%.", math.Abs(impact.Ecology))
	case impact.Ecology > 0:
		message = fmt.Sprintf("Если вы это построите, экология вырастет на %.0f%%.", impact.Ecology)
	default:
		message = "Если вы это построите, экология не изменится."
	}

	return ObjectImpact{ObjectType: canonical, Message: message, Impact: impact}, nil
}
