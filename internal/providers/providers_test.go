package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"citytwin/internal/config"
	"citytwin/internal/model"
)

var (
	origin      = model.Location{Lat: 55.75, Lng: 37.60}
	destination = model.Location{Lat: 55.77, Lng: 37.64}
)

func TestRoutingClientParsesResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["transport"] != "driving" {
			t.Errorf("transport = %v", body["transport"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"routes": []map[string]any{{
				"distance": 5200.0,
				"duration": 780.0,
				"maneuvers": []map[string]any{
					{"street_name": "Тверская улица", "position": map[string]float64{"lon": 37.60, "lat": 55.75}},
					{"street_name": "", "position": map[string]float64{"lon": 37.64, "lat": 55.77}},
				},
			}},
		})
	}))
	defer ts.Close()

	c := NewRoutingClient(config.RoutingConfig{
		APIKey: "test", BaseURL: ts.URL, Timeout: time.Second,
	}, NoopCache{}, zerolog.Nop())

	routes, fallback := c.RouteAlternatives(context.Background(), origin, destination, 1)
	if fallback {
		t.Fatal("unexpected fallback")
	}
	if len(routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(routes))
	}
	r := routes[0]
	if r.DistanceKM != 5.2 || r.DurationMin != 13 {
		t.Fatalf("route = %+v", r)
	}
	// 13 min over 5.2 km is 2.5 min/km, the congested band.
	if r.TrafficScore != 9.0 {
		t.Fatalf("traffic score = %f, want 9.0", r.TrafficScore)
	}
	if r.MainRoad != "Тверская улица" {
		t.Fatalf("main road = %s", r.MainRoad)
	}
	if len(r.Geometry) != 2 {
		t.Fatalf("geometry points = %d, want 2", len(r.Geometry))
	}
}

func TestRoutingClientFallsBackOnServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewRoutingClient(config.RoutingConfig{
		APIKey: "test", BaseURL: ts.URL, Timeout: time.Second,
	}, NoopCache{}, zerolog.Nop())

	routes, fallback := c.RouteAlternatives(context.Background(), origin, destination, 1)
	if !fallback {
		t.Fatal("expected fallback after exhausted retries")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server calls = %d, want 3 (retried)", got)
	}
	if len(routes) != 1 || routes[0].MainRoad != "estimated route" {
		t.Fatalf("fallback routes = %+v", routes)
	}
	if routes[0].DistanceKM <= 0 || routes[0].DurationMin <= 0 {
		t.Fatalf("fallback route = %+v", routes[0])
	}
}

func TestRoutingClientWithoutKeyUsesFallback(t *testing.T) {
	c := NewRoutingClient(config.RoutingConfig{Timeout: time.Second}, NoopCache{}, zerolog.Nop())
	routes, fallback := c.RouteAlternatives(context.Background(), origin, destination, 2)
	if !fallback || len(routes) != 1 {
		t.Fatalf("fallback = %t, routes = %d", fallback, len(routes))
	}
}

func TestIsochroneClientFallbackCircles(t *testing.T) {
	c := NewIsochroneClient(config.MapboxConfig{Timeout: time.Second}, NoopCache{}, zerolog.Nop())

	fc, meta := c.Isochrones(context.Background(), 37.61, 55.75, "walking", []int{10, 5, 10}, true, 0.5, nil)
	if meta.Source != "fallback" || meta.Reason != "missing_mapbox_token" {
		t.Fatalf("meta = %+v", meta)
	}
	// Duplicates removed, sorted ascending.
	if len(meta.ContoursMinutes) != 2 || meta.ContoursMinutes[0] != 5 {
		t.Fatalf("contours = %v", meta.ContoursMinutes)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}

	var feature struct {
		Properties map[string]any `json:"properties"`
		Geometry   struct {
			Type        string          `json:"type"`
			Coordinates [][][]float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(fc.Features[0], &feature); err != nil {
		t.Fatalf("decode feature: %v", err)
	}
	if feature.Properties["fallback"] != true || feature.Geometry.Type != "Polygon" {
		t.Fatalf("feature = %+v", feature)
	}
}

func TestNormalizeMinutes(t *testing.T) {
	tests := []struct {
		in   []int
		want []int
	}{
		{nil, []int{10}},
		{[]int{0, 61, -5}, []int{10}},
		{[]int{30, 10, 20, 10}, []int{10, 20, 30}},
		{[]int{5, 10, 15, 20, 25}, []int{5, 10, 15, 20}}, // capped at four
	}
	for _, tt := range tests {
		got := normalizeMinutes(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("normalizeMinutes(%v) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("normalizeMinutes(%v) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestChatClientRequiresKey(t *testing.T) {
	c := NewChatClient(config.AIConfig{Timeout: time.Second}, zerolog.Nop())
	if _, err := c.Chat(context.Background(), "system", nil, nil, "prompt"); err != ErrNoAPIKey {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestChatClientMultiPartContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":[{"type":"text","text":"Первая часть."},{"type":"text","text":"Вторая часть."}]}}]}`))
	}))
	defer ts.Close()

	c := NewChatClient(config.AIConfig{
		APIKey: "key", BaseURL: ts.URL, Model: "grok-2-latest", Timeout: time.Second,
	}, zerolog.Nop())

	answer, err := c.Chat(context.Background(), "system", map[string]any{"k": "v"}, nil, "prompt")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if answer != "Первая часть.\nВторая часть." {
		t.Fatalf("answer = %q", answer)
	}
}

func TestLocalChatFallbackKeywords(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"Что будет, если закрыть мост?", "мост"},
		{"Ожидается ли рост трафика?", "светофор"},
		{"Как изменится экология?", "Экологическая"},
		{"Просто вопрос", "Уточни сценарий"},
	}
	for _, tt := range tests {
		got := LocalChatFallback(tt.prompt)
		if !strings.Contains(got, tt.want) {
			t.Errorf("fallback for %q = %q, want substring %q", tt.prompt, got, tt.want)
		}
	}
}
