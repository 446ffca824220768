package server

import (
	"errors"
	"net/http"

	"citytwin/internal/providers"
)

// handleAIPredict godoc
// @Title Assistant prediction
// @Description Proxies an urban-planning question to the chat model, with a local fallback.
// @Resource AI
// @Accept json
// @Produce json
// @Param payload body AIPredictRequest true "Prompt with optional context and history"
// @Success 200 {object} AIPredictResponse
// @Route /api/ai/predict [post]
func (s *Server) handleAIPredict(w http.ResponseWriter, r *http.Request) {
	var req AIPredictRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	if !s.aiLimiter.Allow() {
		s.writeError(w, http.StatusTooManyRequests, "too many requests, slow down", nil)
		return
	}

	const systemPrompt = "Ты аналитик цифрового двойника города. Оцениваешь влияние решений " +
		"на трафик, экологию и логистику. Отвечай по-русски, кратко и структурированно."

	answer, err := s.chat.Chat(r.Context(), systemPrompt, req.Context, req.History, req.Prompt)
	if err != nil {
		providerFallbacksTotal.WithLabelValues("xai").Inc()
		reason := "xai_unavailable"
		if errors.Is(err, providers.ErrNoAPIKey) {
			reason = "missing_api_key"
		} else {
			s.log.Warn().Err(err).Msg("chat completion failed, using local fallback")
		}
		s.writeJSON(w, http.StatusOK, AIPredictResponse{
			Answer:   providers.LocalChatFallback(req.Prompt),
			Model:    "local-heuristic",
			Fallback: true,
			Reason:   reason,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, AIPredictResponse{Answer: answer, Model: s.chat.Model()})
}
