// File path: internal/api/recipe_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nicodishanthj/Reciplan_phase1/internal/agent"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common/telemetry"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
)

// guardMemory refuses pipeline work when the configured memory budget is
// exhausted, so an oversized recipe cannot push the process over its limit.
func guardMemory(w http.ResponseWriter, component string) bool {
	if err := telemetry.CheckMemoryBudget(component); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return false
	}
	return true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !guardMemory(w, "analyze") {
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Recipe) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing recipe text"))
		return
	}
	analysis, err := recipe.AnalyzeRecipe(req.Recipe, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	common.Logger().Info("api: recipe analyzed", "name", analysis.Name, "steps", analysis.StepCount)
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if !guardMemory(w, "map") {
		return
	}
	var req mapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	steps := req.Steps
	var analysis *recipe.RecipeAnalysis
	if len(steps) == 0 {
		if strings.TrimSpace(req.Recipe) == "" {
			writeError(w, http.StatusBadRequest, fmt.Errorf("provide steps or recipe text"))
			return
		}
		parsed, err := recipe.AnalyzeRecipe(req.Recipe, req.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		analysis = parsed
		steps = parsed.Steps
	}
	mappings := s.mapper.MapRecipeToTools(r.Context(), steps, req.Strategy, req.Threshold, req.MaxMatches, req.Filters)
	common.Logger().Info("api: recipe mapped", "steps", len(steps), "mappings", len(mappings))
	writeJSON(w, http.StatusOK, mapResponse{Analysis: analysis, Mappings: mappings})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if !guardMemory(w, "plan") {
		return
	}
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Recipe) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing recipe text"))
		return
	}
	result, err := s.planner.Plan(r.Context(), req.Recipe, &agent.PlanOptions{
		Name:       req.Name,
		Strategy:   req.Strategy,
		Threshold:  req.Threshold,
		MaxMatches: req.MaxMatches,
		Filters:    req.Filters,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
