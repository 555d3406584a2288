package config

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"filing_analyzer/pkg/api/response"
	"filing_analyzer/pkg/core/agent"
	"filing_analyzer/pkg/core/logger"
)

type Response struct {
	ActiveProvider   string   `json:"active_provider"`
	AnalysisProvider string   `json:"analysis_provider"`
	Available        []string `json:"available"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr *agent.Manager
	log      *zap.Logger
}

// NewHandler creates a new config handler
func NewHandler(agentMgr *agent.Manager) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
		log:      logger.Named("api"),
	}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/config", h.HandleConfig)
	mux.HandleFunc("/api/config/switch", h.HandleSwitch)
}

func (h *Handler) current() Response {
	return Response{
		ActiveProvider:   h.AgentMgr.GetActiveProvider(),
		AnalysisProvider: h.AgentMgr.ProviderFor(agent.AgentAnalysis),
		Available:        h.AgentMgr.ProviderNames(),
	}
}

// HandleConfig handles GET /api/config
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if response.Preflight(w, r, http.MethodGet) || !response.Method(w, r, http.MethodGet) {
		return
	}
	response.JSON(w, http.StatusOK, h.current(), "no-store")
}

// HandleSwitch handles POST /api/config/switch
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	if response.Preflight(w, r, http.MethodPost) || !response.Method(w, r, http.MethodPost) {
		return
	}

	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		response.Error(w, http.StatusBadRequest, "Unknown provider", err)
		return
	}
	h.log.Info("provider switched", zap.String("provider", req.Provider))
	response.JSON(w, http.StatusOK, h.current(), "no-store")
}
