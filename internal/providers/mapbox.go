package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"citytwin/internal/config"
	"citytwin/internal/geo"
)

// Average travel speed per profile, used to size fallback circles.
var profileSpeedKMH = map[string]float64{
	"walking": 4.8,
	"cycling": 15.0,
	"driving": 30.0,
}

// FeatureCollection is a GeoJSON feature collection with features passed
// through untouched.
type FeatureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// IsochroneMeta describes where an isochrone result came from.
type IsochroneMeta struct {
	Source          string `json:"source"` // mapbox or fallback
	Reason          string `json:"reason,omitempty"`
	Profile         string `json:"profile"`
	ContoursMinutes []int  `json:"contours_minutes"`
	FeatureCount    int    `json:"feature_count"`
}

// IsochroneClient fetches reachability polygons from the Mapbox isochrone API.
type IsochroneClient struct {
	cfg   config.MapboxConfig
	hc    *http.Client
	cache Cache
	log   zerolog.Logger
}

// NewIsochroneClient builds a Mapbox client; pass a NoopCache to disable caching.
func NewIsochroneClient(cfg config.MapboxConfig, cache Cache, log zerolog.Logger) *IsochroneClient {
	return &IsochroneClient{
		cfg:   cfg,
		hc:    &http.Client{Timeout: cfg.Timeout},
		cache: cache,
		log:   log,
	}
}

// Isochrones fetches contour polygons around a center point. Minutes are
// clamped to 1..60, deduplicated and capped at four contours. On any failure
// concentric distance circles are synthesized from the profile speed.
func (c *IsochroneClient) Isochrones(ctx context.Context, lon, lat float64, profile string, minutes []int, polygons bool, denoise float64, generalize *float64) (FeatureCollection, IsochroneMeta) {
	contours := normalizeMinutes(minutes)

	if c.cfg.AccessToken == "" {
		c.log.Warn().Msg("Mapbox token missing for isochrone API, using fallback circles")
		return c.fallback(lon, lat, profile, contours, "missing_mapbox_token")
	}

	cacheKey := fmt.Sprintf("isochrone:%s:%.5f,%.5f:%v:%t:%.2f", profile, lon, lat, contours, polygons, denoise)
	if raw, ok := c.cache.Get(ctx, cacheKey); ok {
		var cached FeatureCollection
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, IsochroneMeta{
				Source:          "mapbox",
				Profile:         profile,
				ContoursMinutes: contours,
				FeatureCount:    len(cached.Features),
			}
		}
	}

	params := url.Values{}
	params.Set("access_token", c.cfg.AccessToken)
	params.Set("contours_minutes", joinInts(contours))
	params.Set("polygons", strconv.FormatBool(polygons))
	params.Set("denoise", strconv.FormatFloat(clamp01(denoise), 'f', -1, 64))
	if generalize != nil && *generalize >= 0 {
		params.Set("generalize", strconv.FormatFloat(*generalize, 'f', -1, 64))
	}

	endpoint := fmt.Sprintf("%s/%s/%.6f,%.6f?%s", c.cfg.BaseURL, profile, lon, lat, params.Encode())
	resp, err := doWithRetry(ctx, c.hc, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("Mapbox isochrone request failed, using fallback circles")
		return c.fallback(lon, lat, profile, contours, "mapbox_unavailable")
	}
	defer resp.Body.Close()

	var parsed FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.Type != "FeatureCollection" {
		c.log.Warn().Err(err).Msg("invalid Mapbox isochrone payload, using fallback circles")
		return c.fallback(lon, lat, profile, contours, "mapbox_unavailable")
	}

	if raw, err := json.Marshal(parsed); err == nil {
		c.cache.Set(ctx, cacheKey, raw)
	}
	return parsed, IsochroneMeta{
		Source:          "mapbox",
		Profile:         profile,
		ContoursMinutes: contours,
		FeatureCount:    len(parsed.Features),
	}
}

func (c *IsochroneClient) fallback(lon, lat float64, profile string, contours []int, reason string) (FeatureCollection, IsochroneMeta) {
	speed, ok := profileSpeedKMH[profile]
	if !ok {
		speed = 5.0
	}

	features := make([]json.RawMessage, 0, len(contours))
	for _, minute := range contours {
		radiusKM := speed * float64(minute) / 60
		feature := map[string]any{
			"type": "Feature",
			"properties": map[string]any{
				"contour":  minute,
				"profile":  profile,
				"fallback": true,
			},
			"geometry": map[string]any{
				"type":        "Polygon",
				"coordinates": [][][]float64{geo.CircleRing(lon, lat, radiusKM, 72)},
			},
		}
		raw, err := json.Marshal(feature)
		if err != nil {
			continue
		}
		features = append(features, raw)
	}

	return FeatureCollection{Type: "FeatureCollection", Features: features}, IsochroneMeta{
			Source:          "fallback",
			Reason:          reason,
			Profile:         profile,
			ContoursMinutes: contours,
			FeatureCount:    len(features),
		}
}

func normalizeMinutes(values []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range values {
		if v >= 1 && v <= 60 && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	if len(out) > 4 {
		out = out[:4]
	}
	if len(out) == 0 {
		out = []int{10}
	}
	return out
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
