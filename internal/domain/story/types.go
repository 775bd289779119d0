package story

import (
	"context"
	"time"

	"github.com/yanqian/twilight-hud/internal/infra/llm/chatgpt"
	"github.com/yanqian/twilight-hud/pkg/metrics"
)

// Config drives story generation.
type Config struct {
	Model          string
	Temperature    float32
	MaxTokens      int
	Theme          string
	PromptTemplate string
}

// Story is a generated tale and, when speech succeeded, its audio.
type Story struct {
	Theme     string             `json:"theme"`
	Prompt    string             `json:"prompt"`
	Text      string             `json:"text"`
	Usage     metrics.TokenUsage `json:"usage"`
	Audio     *Audio             `json:"audio,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Audio points at the archived narration.
type Audio struct {
	Backend  string `json:"backend"`
	Location string `json:"location"`
}

// ChatClient generates the story text.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// TokenCounter estimates tokens when the API omits usage.
type TokenCounter interface {
	Count(text string) (int, error)
}

// Speaker synthesizes speech as MP3.
type Speaker interface {
	Name() string
	Available() bool
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AudioStore archives narration and returns a playable location.
type AudioStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Narrator plays archived narration.
type Narrator interface {
	Play(ctx context.Context, location string) error
}
