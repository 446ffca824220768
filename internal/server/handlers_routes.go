package server

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"citytwin/internal/predict"
	"citytwin/internal/providers"
)

var routeChoiceRe = regexp.MustCompile(`(?i)маршрут\s*[#№]?\s*(\d+)`)

// handleOptimizeRoute godoc
// @Title Optimize route
// @Description Fetches route alternatives, scores expected traffic and picks the best one.
// @Resource Routes
// @Accept json
// @Produce json
// @Param payload body OptimizeRouteRequest true "Origin and destination"
// @Success 200 {object} OptimizeRouteResponse
// @Route /api/routes/optimize [post]
func (s *Server) handleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRouteRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	alternatives := req.Alternatives
	if alternatives == 0 {
		alternatives = 2
	}
	routes, fallback := s.routing.RouteAlternatives(r.Context(), req.Origin.toModel(), req.Destination.toModel(), alternatives)
	if fallback {
		providerFallbacksTotal.WithLabelValues("dgis").Inc()
	}

	departAt := time.Now()
	if req.DepartAt != nil {
		departAt = *req.DepartAt
	}

	best := 0
	bestCost := 0.0
	var bestPrediction predict.Prediction
	for i, route := range routes {
		p := s.predictor.PredictTraffic(predict.RouteFeatures{
			DistanceKM:          route.DistanceKM,
			DurationMin:         route.DurationMin,
			Hour:                departAt.Hour(),
			DayOfWeek:           (int(departAt.Weekday()) + 6) % 7,
			CurrentTrafficScore: route.TrafficScore,
		})
		cost := route.DurationMin + p.EstimatedDelayMinutes
		if i == 0 || cost < bestCost {
			best, bestCost, bestPrediction = i, cost, p
		}
	}

	resp := OptimizeRouteResponse{
		Routes:         routes,
		BestRouteIndex: best,
		Fallback:       fallback,
		Prediction:     bestPrediction,
	}

	if req.WithAdvice {
		resp.Recommendation, resp.BestRouteIndex = s.routeAdvice(r, routes, best, bestPrediction)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// routeAdvice asks the assistant to pick among the alternatives. When the
// answer names a route ("маршрут N") that index wins; otherwise the heuristic
// choice stands.
func (s *Server) routeAdvice(r *http.Request, routes []providers.Route, best int, prediction predict.Prediction) (string, int) {
	var sb strings.Builder
	for i, route := range routes {
		fmt.Fprintf(&sb, "Маршрут %d: %.1f км, %.0f мин, загруженность %.1f/10, основная дорога: %s.\n",
			i+1, route.DistanceKM, route.DurationMin, route.TrafficScore, route.MainRoad)
	}
	prompt := sb.String() + "Какой маршрут выбрать и почему? Ответь кратко и укажи номер маршрута."

	answer, err := s.chat.Chat(r.Context(),
		"Ты транспортный аналитик городской логистики. Отвечай по-русски, кратко и по делу.",
		map[string]any{"predicted_level": prediction.PredictedLevel, "estimated_delay_minutes": prediction.EstimatedDelayMinutes},
		nil, prompt)
	if err != nil {
		providerFallbacksTotal.WithLabelValues("xai").Inc()
		s.log.Debug().Err(err).Msg("route advice unavailable, keeping heuristic choice")
		return providers.LocalChatFallback(prompt), best
	}

	if m := routeChoiceRe.FindStringSubmatch(answer); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= len(routes) {
			best = n - 1
		}
	}
	return answer, best
}
