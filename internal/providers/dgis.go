package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/rs/zerolog"

	"citytwin/internal/config"
	"citytwin/internal/geo"
	"citytwin/internal/model"
)

// Road distance is rarely the straight line; the fallback assumes a 1.5x
// detour factor and a 30 km/h average city speed.
const (
	fallbackRoadFactor  = 1.5
	fallbackCitySpeedKM = 30.0
)

// Route is one routing alternative, normalized away from the 2GIS wire shape.
type Route struct {
	DistanceKM   float64     `json:"distance_km"`
	DurationMin  float64     `json:"duration_min"`
	Geometry     [][]float64 `json:"geometry"`
	TrafficScore float64     `json:"traffic_score"`
	MainRoad     string      `json:"main_road"`
}

// RoutingClient fetches route alternatives from the 2GIS routing API.
type RoutingClient struct {
	cfg   config.RoutingConfig
	hc    *http.Client
	cache Cache
	log   zerolog.Logger
}

// NewRoutingClient builds a 2GIS client; pass a NoopCache to disable caching.
func NewRoutingClient(cfg config.RoutingConfig, cache Cache, log zerolog.Logger) *RoutingClient {
	return &RoutingClient{
		cfg:   cfg,
		hc:    &http.Client{Timeout: cfg.Timeout},
		cache: cache,
		log:   log,
	}
}

// RouteAlternatives returns up to alternatives+1 routes between two points.
// It never fails: when the API key is missing or the call errors out, a
// single straight-line estimate is returned and fallback is reported true.
func (c *RoutingClient) RouteAlternatives(ctx context.Context, origin, destination model.Location, alternatives int) ([]Route, bool) {
	if c.cfg.APIKey == "" {
		c.log.Warn().Msg("2GIS API key not configured, using fallback route")
		return []Route{c.fallbackRoute(origin, destination)}, true
	}

	cacheKey := fmt.Sprintf("dgis:%.5f,%.5f:%.5f,%.5f:%d",
		origin.Lat, origin.Lng, destination.Lat, destination.Lng, alternatives)
	if raw, ok := c.cache.Get(ctx, cacheKey); ok {
		var cached []Route
		if err := json.Unmarshal(raw, &cached); err == nil && len(cached) > 0 {
			return cached, false
		}
	}

	body := map[string]any{
		"points": []map[string]any{
			{"type": "stop", "lon": origin.Lng, "lat": origin.Lat},
			{"type": "stop", "lon": destination.Lng, "lat": destination.Lat},
		},
		"transport":    "driving",
		"route_mode":   "fastest",
		"traffic_mode": "jam",
		"output":       "detailed",
		"alternative":  alternatives,
		"locale":       "en",
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return []Route{c.fallbackRoute(origin, destination)}, true
	}

	url := c.cfg.BaseURL + "?key=" + c.cfg.APIKey
	resp, err := doWithRetry(ctx, c.hc, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("2GIS routing request failed, using fallback route")
		return []Route{c.fallbackRoute(origin, destination)}, true
	}
	defer resp.Body.Close()

	var parsed dgisResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Warn().Err(err).Msg("2GIS response decode failed, using fallback route")
		return []Route{c.fallbackRoute(origin, destination)}, true
	}

	routes := parsed.normalize()
	if len(routes) == 0 {
		c.log.Warn().Msg("2GIS returned no routes, using fallback route")
		return []Route{c.fallbackRoute(origin, destination)}, true
	}

	if raw, err := json.Marshal(routes); err == nil {
		c.cache.Set(ctx, cacheKey, raw)
	}
	return routes, false
}

func (c *RoutingClient) fallbackRoute(origin, destination model.Location) Route {
	roadKM := geo.DistanceKM(origin, destination) * fallbackRoadFactor
	return Route{
		DistanceKM:   round2(roadKM),
		DurationMin:  round1(roadKM / fallbackCitySpeedKM * 60),
		Geometry:     [][]float64{{origin.Lng, origin.Lat}, {destination.Lng, destination.Lat}},
		TrafficScore: 5.0,
		MainRoad:     "estimated route",
	}
}

type dgisResponse struct {
	Routes []dgisRoute `json:"routes"`
}

type dgisRoute struct {
	Distance  float64        `json:"distance"` // meters
	Duration  float64        `json:"duration"` // seconds
	Maneuvers []dgisManeuver `json:"maneuvers"`
}

type dgisManeuver struct {
	StreetName string `json:"street_name"`
	Name       string `json:"name"`
	Position   *struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"position"`
}

func (r dgisResponse) normalize() []Route {
	out := make([]Route, 0, len(r.Routes))
	for _, raw := range r.Routes {
		distanceKM := raw.Distance / 1000
		durationMin := raw.Duration / 60

		geometry := make([][]float64, 0, len(raw.Maneuvers))
		for _, m := range raw.Maneuvers {
			if m.Position != nil {
				geometry = append(geometry, []float64{m.Position.Lon, m.Position.Lat})
			}
		}

		out = append(out, Route{
			DistanceKM:   round2(distanceKM),
			DurationMin:  round1(durationMin),
			Geometry:     geometry,
			TrafficScore: estimateTrafficScore(distanceKM, durationMin),
			MainRoad:     mainRoad(raw.Maneuvers),
		})
	}
	return out
}

// estimateTrafficScore derives a 0-10 congestion score from the minutes-per-km
// ratio: free flow is about 1.0 min/km, heavy traffic 3.0.
func estimateTrafficScore(distanceKM, durationMin float64) float64 {
	if distanceKM <= 0 {
		return 5.0
	}
	ratio := durationMin / distanceKM
	switch {
	case ratio < 1.2:
		return 2.0
	case ratio < 1.8:
		return 5.0
	case ratio < 2.5:
		return 7.5
	default:
		return 9.0
	}
}

func mainRoad(maneuvers []dgisManeuver) string {
	for _, m := range maneuvers {
		name := m.StreetName
		if name == "" {
			name = m.Name
		}
		if len(name) > 3 {
			return name
		}
	}
	return "main route"
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
