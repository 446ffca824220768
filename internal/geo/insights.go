package geo

import "math"

// InsightsParams are the city-model assumptions behind polygon insights.
// They come from configuration so different cities can tune them.
type InsightsParams struct {
	PopDensityPerKM2 float64
	AvgHouseholdSize float64
	StudentRatio     float64
	SchoolCapacity   int
}

// PolygonInsights is the heuristic urban profile of a drawn zone.
type PolygonInsights struct {
	AreaKM2                     float64  `json:"area_km2"`
	Centroid                    []float64 `json:"centroid"`
	EstimatedPopulation         int      `json:"estimated_population"`
	EstimatedHouseholds         int      `json:"estimated_households"`
	EstimatedStudents           int      `json:"estimated_students"`
	RecommendedNewSchools       int      `json:"recommended_new_schools"`
	AccessiblePopulationEstimate int     `json:"accessible_population_estimate"`
	Profile                     string   `json:"profile"`
	AccessMinutes               int      `json:"access_minutes"`
	Recommendations             []string `json:"recommendations"`
}

var accessibilityFactor = map[string]float64{
	"walking": 0.72,
	"cycling": 0.84,
	"driving": 0.91,
}

// AnalyzePolygon builds a fast heuristic profile of a polygon zone: estimated
// population from area and density, derived school demand and a set of
// planning recommendations. Intended for instant UI feedback, not planning
// truth.
func AnalyzePolygon(polygon [][]float64, accessMinutes int, profile string, params InsightsParams) PolygonInsights {
	ring := NormalizeRing(polygon)
	areaKM2 := PolygonAreaKM2(ring)
	lon, lat := PolygonCentroid(ring)

	population := max(0, int(math.Round(areaKM2*params.PopDensityPerKM2)))
	households := max(0, int(math.Round(float64(population)/math.Max(params.AvgHouseholdSize, 1))))
	students := max(0, int(math.Round(float64(population)*params.StudentRatio)))

	capacity := params.SchoolCapacity
	if capacity < 1 {
		capacity = 1
	}
	newSchools := max(0, int(math.Ceil(float64(students)/float64(capacity))))

	factor, ok := accessibilityFactor[profile]
	if !ok {
		factor = 0.75
	}
	adjusted := factor * math.Max(0.4, math.Min(1.2, float64(accessMinutes)/10))
	accessible := int(math.Round(float64(population) * math.Min(adjusted, 1)))

	var recs []string
	if newSchools >= 2 {
		recs = append(recs, "Добавить школы или расширить существующие в пределах выделенной зоны")
	}
	if population > 10_000 {
		recs = append(recs, "Проверить пропускную способность магистралей и общественного транспорта")
	}
	if areaKM2 > 2.0 {
		recs = append(recs, "Разбить развитие территории на очереди с отдельной сервисной инфраструктурой")
	}
	if len(recs) == 0 {
		recs = append(recs, "Зона умеренного масштаба: можно запускать локальные пилотные проекты")
	}

	return PolygonInsights{
		AreaKM2:                      round4(areaKM2),
		Centroid:                     []float64{round6(lon), round6(lat)},
		EstimatedPopulation:          population,
		EstimatedHouseholds:          households,
		EstimatedStudents:            students,
		RecommendedNewSchools:        newSchools,
		AccessiblePopulationEstimate: accessible,
		Profile:                      profile,
		AccessMinutes:                accessMinutes,
		Recommendations:              recs,
	}
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
