// Package api exposes the analysis engine over HTTP. Handlers delegate to the
// service layer; the only state held here is a short-lived response cache.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/services"
)

// Store combines the database operations the handlers need
type Store interface {
	services.AssistantViewStore
	services.AcceptSuggestionStore
	services.RecordDecisionStore
}

// Handler holds all dependencies for HTTP handlers
type Handler struct {
	store  Store
	cfg    *config.Config
	logger *zap.Logger

	// views caches assistant responses per unit and week. Entries expire
	// quickly and are dropped eagerly whenever a write changes the week.
	views *lru.LRU[string, *model.AssistantResponse]
}

// NewHandler creates a new handler with the given store and configuration
func NewHandler(store Store, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		cfg:    cfg,
		logger: logger,
		views:  lru.NewLRU[string, *model.AssistantResponse](256, nil, 30*time.Second),
	}
}

type acceptRequest struct {
	UnitID    string `json:"unitId,omitempty"`
	WeekStart string `json:"weekStart"`
}

type decisionRequest struct {
	UnitID    string `json:"unitId,omitempty"`
	WeekStart string `json:"weekStart"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
}

type acceptResponse struct {
	SuggestionID        string   `json:"suggestionId"`
	Outcome             string   `json:"outcome"`
	AlreadyApplied      bool     `json:"alreadyApplied"`
	AppliedActions      []string `json:"appliedActions,omitempty"`
	ResolvedViolations  []string `json:"resolvedViolations,omitempty"`
	NewViolations       []string `json:"newViolations,omitempty"`
	RemainingViolations []string `json:"remainingViolations,omitempty"`
	Issues              []string `json:"issues,omitempty"`
}

// GetHealth reports liveness
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetAnalysis runs the pipeline for ?week=YYYY-MM-DD and returns the raw
// engine result
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	unitID, weekStart, ok := h.weekParams(w, r)
	if !ok {
		return
	}

	analysis, err := services.AnalyzeWeek(r.Context(), h.store, h.cfg, h.logger, unitID, weekStart)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis.Result)
}

// GetAssistant returns the assistant view with decision overlay, served from
// the response cache when fresh
func (h *Handler) GetAssistant(w http.ResponseWriter, r *http.Request) {
	unitID, weekStart, ok := h.weekParams(w, r)
	if !ok {
		return
	}

	cacheKey := unitID + "|" + weekStart
	if cached, hit := h.views.Get(cacheKey); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	response, err := services.BuildAssistantView(r.Context(), h.store, h.cfg, h.logger, unitID, weekStart)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	h.views.Add(cacheKey, response)
	writeJSON(w, http.StatusOK, response)
}

// AcceptSuggestion applies a suggestion to the stored roster
func (h *Handler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	suggestionID := chi.URLParam(r, "id")

	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	unitID := req.UnitID
	if unitID == "" {
		unitID = h.cfg.DefaultUnitID
	}

	result, err := services.AcceptSuggestion(r.Context(), h.store, h.cfg, h.logger, unitID, req.WeekStart, suggestionID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	h.views.Remove(unitID + "|" + req.WeekStart)

	response := acceptResponse{
		SuggestionID:   result.Signature,
		AlreadyApplied: result.AlreadyApplied,
	}
	if result.AlreadyApplied {
		response.Outcome = "already-applied"
		writeJSON(w, http.StatusOK, response)
		return
	}

	response.Outcome = string(result.Accept.Outcome)
	response.AppliedActions = result.Accept.Apply.Applied
	response.ResolvedViolations = result.Accept.ResolvedViolations
	response.NewViolations = result.Accept.NewViolations
	response.RemainingViolations = result.Accept.RemainingViolations
	for _, issue := range result.Accept.Apply.Issues {
		response.Issues = append(response.Issues, fmt.Sprintf("%s: %s", issue.ActionKey, issue.Message))
	}

	status := http.StatusOK
	if !result.Persisted {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, response)
}

// RecordDecision stores an accept/reject verdict for a suggestion
func (h *Handler) RecordDecision(w http.ResponseWriter, r *http.Request) {
	suggestionID := chi.URLParam(r, "id")

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	unitID := req.UnitID
	if unitID == "" {
		unitID = h.cfg.DefaultUnitID
	}

	record, err := services.RecordDecision(r.Context(), h.store, h.cfg, h.logger, services.RecordDecisionArgs{
		UnitID:       unitID,
		WeekStart:    req.WeekStart,
		SuggestionID: suggestionID,
		Decision:     model.DecisionState(req.Decision),
		Source:       "api",
		Reason:       req.Reason,
	})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	h.views.Remove(unitID + "|" + req.WeekStart)

	writeJSON(w, http.StatusOK, map[string]string{
		"suggestionId": record.SuggestionID,
		"decision":     record.Decision,
	})
}

func (h *Handler) weekParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	weekStart := r.URL.Query().Get("week")
	if weekStart == "" {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("missing week query parameter"))
		return "", "", false
	}
	unitID := r.URL.Query().Get("unit")
	if unitID == "" {
		unitID = h.cfg.DefaultUnitID
	}
	return unitID, weekStart, true
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Warn("Request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
