// File path: internal/api/server_test.go
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/llm/providers"
	"github.com/nicodishanthj/Reciplan_phase1/internal/mapper"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
	"github.com/nicodishanthj/Reciplan_phase1/internal/vector"
)

const orderRecipe = "1. Fetch customer records from the database. " +
	"2. Transform the records to JSON format. " +
	"3. Validate the JSON data. " +
	"4. Send an email notification to the admin."

func testRecords() []catalog.ToolRecord {
	return []catalog.ToolRecord{
		{
			ID:           "tool_db",
			Name:         "Database Record Fetcher",
			ToolType:     "api",
			Query:        "fetch customer records from the database",
			Capabilities: []string{"fetch records", "database query"},
			HealthStatus: catalog.HealthHealthy,
			UsageCount:   40,
		},
		{
			ID:           "tool_json",
			Name:         "JSON Transformer",
			ToolType:     "function",
			Query:        "transform records to json format",
			Capabilities: []string{"transform json"},
			HealthStatus: catalog.HealthHealthy,
			UsageCount:   12,
		},
		{
			ID:           "tool_mail",
			Name:         "Email Notifier",
			ToolType:     "function",
			Query:        "send an email notification to a recipient",
			Capabilities: []string{"send email"},
			HealthStatus: catalog.HealthHealthy,
			UsageCount:   25,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	records := testRecords()
	store := catalog.NewMemoryStore(records...)
	searcher := vector.NewLocalIndex(records)
	srv, err := NewServer(store, searcher, providers.NewLocalProvider())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func postJSON(t *testing.T, srv *Server, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func TestHandleAnalyze(t *testing.T) {
	srv := newTestServer(t)
	rr := postJSON(t, srv, "/api/recipe/analyze", analyzeRequest{Recipe: orderRecipe, Name: "order flow"})
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
	}
	var analysis recipe.RecipeAnalysis
	if err := json.NewDecoder(rr.Body).Decode(&analysis); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if analysis.StepCount != 4 {
		t.Fatalf("expected 4 steps, got %d", analysis.StepCount)
	}
	if analysis.Name != "order flow" {
		t.Fatalf("unexpected analysis name %q", analysis.Name)
	}
}

func TestHandleAnalyzeRejectsEmpty(t *testing.T) {
	srv := newTestServer(t)
	rr := postJSON(t, srv, "/api/recipe/analyze", analyzeRequest{Recipe: "   "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandleMapFromRecipeText(t *testing.T) {
	srv := newTestServer(t)
	rr := postJSON(t, srv, "/api/recipe/map", mapRequest{Recipe: orderRecipe})
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
	}
	var resp mapResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Analysis == nil || resp.Analysis.StepCount != 4 {
		t.Fatalf("expected inline analysis with 4 steps, got %+v", resp.Analysis)
	}
	if len(resp.Mappings) != 4 {
		t.Fatalf("expected 4 mappings, got %d", len(resp.Mappings))
	}
}

func TestHandleMapWithPreparsedSteps(t *testing.T) {
	srv := newTestServer(t)
	steps := []recipe.ParsedStep{{
		ID:          "step_1",
		Name:        "Fetch customer records",
		StepType:    recipe.StepIntegration,
		Order:       1,
		ActionVerbs: []string{"fetch"},
		Entities:    []string{"customer records", "database"},
		RawText:     "Fetch customer records from the database",
	}}
	rr := postJSON(t, srv, "/api/recipe/map", mapRequest{Steps: steps})
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
	}
	var resp mapResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Analysis != nil {
		t.Fatal("pre-parsed steps should not produce an inline analysis")
	}
	if len(resp.Mappings) != 1 {
		t.Fatalf("expected 1 mapping, got %d", len(resp.Mappings))
	}
}

func TestHandleMapRequiresInput(t *testing.T) {
	srv := newTestServer(t)
	rr := postJSON(t, srv, "/api/recipe/map", mapRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandlePlan(t *testing.T) {
	srv := newTestServer(t)
	rr := postJSON(t, srv, "/api/recipe/plan", planRequest{Recipe: orderRecipe, Name: "order flow"})
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Analysis  *recipe.RecipeAnalysis `json:"analysis"`
		Mappings  []mapper.StepMapping   `json:"mappings"`
		Narrative string                 `json:"narrative"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Analysis == nil || len(resp.Mappings) != 4 {
		t.Fatalf("expected full plan, got analysis=%v mappings=%d", resp.Analysis, len(resp.Mappings))
	}
	if resp.Narrative == "" {
		t.Fatal("expected a narrative")
	}
}

func TestHandleTools(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	var resp struct {
		Tools []catalog.ToolRecord `json:"tools"`
		Count int                  `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 3 || len(resp.Tools) != 3 {
		t.Fatalf("expected 3 tools, got count=%d len=%d", resp.Count, len(resp.Tools))
	}
}

func TestHandleToolByID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tools/tool_db", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
	}
	var tool catalog.ToolRecord
	if err := json.NewDecoder(rr.Body).Decode(&tool); err != nil {
		t.Fatalf("decode tool: %v", err)
	}
	if tool.ID != "tool_db" {
		t.Fatalf("unexpected tool %q", tool.ID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tools/missing", nil)
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown tool, got %d", rr.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp.Status != "ok" || !resp.SearcherAvailable || resp.CatalogTools != 3 {
		t.Fatalf("unexpected health payload: %+v", resp)
	}
}

func TestHandleLogs(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/logs", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	var resp struct {
		Entries []struct {
			Message string `json:"message"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
}
