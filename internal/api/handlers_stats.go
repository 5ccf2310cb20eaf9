package api

import (
	"net/http"

	"github.com/dgallion1/jobparse/internal/config"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if !s.orchestrator.ValidatorEnabled() {
		jsonError(w, "llm validator disabled", http.StatusServiceUnavailable)
		return
	}

	model := s.cfg.AnthropicModel
	if s.cfg.ValidatorProvider == config.ProviderGemini {
		model = s.cfg.GeminiModel
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": s.cfg.ValidatorProvider,
		"model":    model,
		"stats":    s.orchestrator.ValidatorStats(),
	})
}
