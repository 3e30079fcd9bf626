// File path: internal/llm/llm.go
package llm

import (
	"log/slog"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"

	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

// NewProvider selects the narration backend. RECIPLAN_LLM_PROVIDER=local
// forces the deterministic fallback; otherwise an OpenAI-backed provider is
// built when OPENAI_API_KEY is set. Mapping plans render either way, the
// local provider just echoes the digest instead of prose.
func NewProvider() Provider {
	logger := common.Logger()
	forced := strings.ToLower(strings.TrimSpace(os.Getenv("RECIPLAN_LLM_PROVIDER")))
	if forced == "local" {
		logger.Info("llm: local narration provider forced by configuration")
		return providers.NewLocalProvider()
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		if forced == "openai" {
			logger.Warn("llm: openai provider requested but OPENAI_API_KEY is unset; narration falls back to local")
		} else {
			logger.Info("llm: no OPENAI_API_KEY, plan narration uses the local provider")
		}
		return providers.NewLocalProvider()
	}
	return providers.NewOpenAIProvider(openai.NewClient(openaiOptions(apiKey, logger)...))
}

func openaiOptions(apiKey string, logger *slog.Logger) []openai.ClientOption {
	opts := []openai.ClientOption{openai.WithAPIKey(apiKey)}
	if raw := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); raw != "" {
		if timeout, err := time.ParseDuration(raw); err == nil {
			opts = append(opts, openai.WithHTTPTimeout(timeout))
		} else {
			logger.Warn("llm: ignoring invalid OPENAI_HTTP_TIMEOUT", "value", raw, "error", err)
		}
	}
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("llm: narration requests routed to custom endpoint", "endpoint", endpoint)
		opts = append(opts, openai.WithBaseURL(endpoint))
	}
	return opts
}
