// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"errors"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v2"

	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
)

// Plan narration is short-form prose, so the cheap chat model is the
// default; both models are overridable per deployment.
const (
	defaultChatModel  = "gpt-4o-mini"
	defaultEmbedModel = "text-embedding-3-small"
)

type OpenAIProvider struct {
	client     *openai.Client
	chatModel  string
	embedModel string
}

func NewOpenAIProvider(client *openai.Client) *OpenAIProvider {
	provider := &OpenAIProvider{
		client:     client,
		chatModel:  modelFromEnv("OPENAI_CHAT_MODEL", defaultChatModel),
		embedModel: modelFromEnv("OPENAI_EMBED_MODEL", defaultEmbedModel),
	}
	common.Logger().Info("llm: openai narration provider ready",
		"chat_model", provider.chatModel, "embed_model", provider.embedModel)
	return provider
}

func modelFromEnv(key, fallback string) string {
	if model := strings.TrimSpace(os.Getenv(key)); model != "" {
		return model
	}
	return fallback
}

// Chat renders a mapping-plan narration from the prompt messages.
func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if o == nil || o.client == nil {
		return "", errors.New("openai provider not configured")
	}
	if len(messages) == 0 {
		return "", errors.New("no narration prompt provided")
	}
	params := openai.ChatCompletionCreateParams{Model: o.chatModel}
	for _, msg := range messages {
		params.Messages = append(params.Messages, openai.ChatCompletionMessageParam{
			Role:    strings.ToLower(msg.Role),
			Content: msg.Content,
		})
	}
	logger := common.Logger()
	resp, err := openai.Chat.Create(ctx, o.client, params)
	if err != nil {
		logger.Error("llm: narration request failed", "model", o.chatModel, "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("narration response contained no choices")
	}
	logger.Debug("llm: narration rendered", "model", o.chatModel, "messages", len(messages))
	return resp.Choices[0].Message.Content, nil
}

// Embed vectorizes recipe or tool text for similarity indexing.
func (o *OpenAIProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("openai provider not configured")
	}
	if len(input) == 0 {
		return nil, nil
	}
	resp, err := openai.Embeddings.Create(ctx, o.client, openai.EmbeddingCreateParams{
		Model: o.embedModel,
		Input: input,
	})
	if err != nil {
		common.Logger().Error("llm: embedding request failed", "model", o.embedModel, "error", err)
		return nil, err
	}
	vectors := make([][]float32, 0, len(resp.Data))
	for _, data := range resp.Data {
		vectors = append(vectors, data.Embedding)
	}
	return vectors, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}
