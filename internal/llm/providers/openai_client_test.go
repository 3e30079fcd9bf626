// File path: internal/llm/providers/openai_client_test.go
package providers

import (
	"context"
	"testing"

	openai "github.com/openai/openai-go/v2"
)

func TestNewOpenAIProviderModelDefaults(t *testing.T) {
	t.Setenv("OPENAI_CHAT_MODEL", "")
	t.Setenv("OPENAI_EMBED_MODEL", "")
	provider := NewOpenAIProvider(openai.NewClient())
	if provider.chatModel != defaultChatModel {
		t.Errorf("chat model = %q, want %q", provider.chatModel, defaultChatModel)
	}
	if provider.embedModel != defaultEmbedModel {
		t.Errorf("embed model = %q, want %q", provider.embedModel, defaultEmbedModel)
	}

	t.Setenv("OPENAI_CHAT_MODEL", "gpt-4o")
	if got := NewOpenAIProvider(openai.NewClient()).chatModel; got != "gpt-4o" {
		t.Errorf("chat model = %q, want env override", got)
	}
}

func TestOpenAIProviderGuards(t *testing.T) {
	ctx := context.Background()
	var nilProvider *OpenAIProvider
	if _, err := nilProvider.Chat(ctx, []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("expected error from nil provider chat")
	}
	unconfigured := &OpenAIProvider{}
	if _, err := unconfigured.Chat(ctx, []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("expected error from chat without a client")
	}
	provider := NewOpenAIProvider(openai.NewClient())
	if _, err := provider.Chat(ctx, nil); err == nil {
		t.Error("expected error from empty prompt")
	}
	vectors, err := provider.Embed(ctx, nil)
	if err != nil || vectors != nil {
		t.Errorf("empty embed = %v, %v, want nil, nil", vectors, err)
	}
}
