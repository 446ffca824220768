package server

import (
	"net/http"

	"citytwin/internal/geo"
)

// handleIsochrone godoc
// @Title Isochrone polygons
// @Description Returns reachability contours around a point as GeoJSON.
// @Resource Geo
// @Accept json
// @Produce json
// @Param payload body IsochroneRequest true "Center point and contour settings"
// @Success 200 {object} providers.FeatureCollection
// @Route /api/geo/isochrone [post]
func (s *Server) handleIsochrone(w http.ResponseWriter, r *http.Request) {
	var req IsochroneRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	profile := req.Profile
	if profile == "" {
		profile = "walking"
	}
	polygons := true
	if req.Polygons != nil {
		polygons = *req.Polygons
	}

	fc, meta := s.isochrones.Isochrones(r.Context(), req.Lng, req.Lat, profile, req.Minutes, polygons, req.Denoise, req.Generalize)
	if meta.Source == "fallback" {
		providerFallbacksTotal.WithLabelValues("mapbox").Inc()
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"isochrones": fc,
		"meta":       meta,
	})
}

// handlePolygonInsights godoc
// @Title Polygon insights
// @Description Computes a heuristic urban profile (population, school demand) for a drawn polygon.
// @Resource Geo
// @Accept json
// @Produce json
// @Param payload body PolygonInsightsRequest true "Polygon ring as [lon,lat] pairs"
// @Success 200 {object} geo.PolygonInsights
// @Route /api/geo/polygon-insights [post]
func (s *Server) handlePolygonInsights(w http.ResponseWriter, r *http.Request) {
	var req PolygonInsightsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	profile := req.Profile
	if profile == "" {
		profile = "walking"
	}
	minutes := req.AccessMinutes
	if minutes == 0 {
		minutes = 10
	}

	insights := geo.AnalyzePolygon(req.Polygon, minutes, profile, geo.InsightsParams{
		PopDensityPerKM2: s.cfg.City.PopDensityPerKM2,
		AvgHouseholdSize: s.cfg.City.AvgHouseholdSize,
		StudentRatio:     s.cfg.City.StudentRatio,
		SchoolCapacity:   s.cfg.City.SchoolCapacity,
	})
	s.writeJSON(w, http.StatusOK, insights)
}
