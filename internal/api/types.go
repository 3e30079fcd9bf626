// File path: internal/api/types.go
package api

import (
	"github.com/nicodishanthj/Reciplan_phase1/internal/mapper"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
)

type analyzeRequest struct {
	Recipe string `json:"recipe"`
	Name   string `json:"name,omitempty"`
}

type mapRequest struct {
	Recipe     string               `json:"recipe,omitempty"`
	Name       string               `json:"name,omitempty"`
	Steps      []recipe.ParsedStep  `json:"steps,omitempty"`
	Strategy   string               `json:"strategy,omitempty"`
	Threshold  float64              `json:"threshold,omitempty"`
	MaxMatches int                  `json:"max_matches,omitempty"`
	Filters    map[string]string    `json:"catalog_filters,omitempty"`
}

type mapResponse struct {
	Analysis *recipe.RecipeAnalysis `json:"analysis,omitempty"`
	Mappings []mapper.StepMapping   `json:"mappings"`
}

type planRequest struct {
	Recipe     string            `json:"recipe"`
	Name       string            `json:"name,omitempty"`
	Strategy   string            `json:"strategy,omitempty"`
	Threshold  float64           `json:"threshold,omitempty"`
	MaxMatches int               `json:"max_matches,omitempty"`
	Filters    map[string]string `json:"catalog_filters,omitempty"`
}

type healthResponse struct {
	Status            string `json:"status"`
	SearcherAvailable bool   `json:"searcher_available"`
	CatalogTools      int    `json:"catalog_tools"`
	Provider          string `json:"provider,omitempty"`
}
