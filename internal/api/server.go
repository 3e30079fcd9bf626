// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/Reciplan_phase1/internal/agent"
	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/llm"
	"github.com/nicodishanthj/Reciplan_phase1/internal/mapper"
	"github.com/nicodishanthj/Reciplan_phase1/internal/search"
	"github.com/nicodishanthj/Reciplan_phase1/internal/vector"
)

type Server struct {
	router   chi.Router
	store    catalog.Store
	searcher vector.Searcher
	mapper   *mapper.Mapper
	planner  *agent.Planner
	provider llm.Provider
}

func NewServer(store catalog.Store, searcher vector.Searcher, provider llm.Provider) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher required")
	}
	logger := common.Logger()
	providerName := "none"
	if provider != nil {
		providerName = provider.Name()
	}
	logger.Info("api: building server", "provider", providerName, "searcher_available", searcher.Available())

	engine := search.NewEngine(searcher)
	m := mapper.NewMapper(engine)
	srv := &Server{
		router:   chi.NewRouter(),
		store:    store,
		searcher: searcher,
		mapper:   m,
		planner:  agent.NewPlanner(provider, m),
		provider: provider,
	}
	srv.routes()
	logger.Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/api/recipe/analyze", s.handleAnalyze)
	s.router.Post("/api/recipe/map", s.handleMap)
	s.router.Post("/api/recipe/plan", s.handlePlan)
	s.router.Get("/api/tools", s.handleTools)
	s.router.Get("/api/tools/{toolID}", s.handleTool)
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Handle("/debug/vars", expvar.Handler())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
