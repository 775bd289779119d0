package story

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/twilight-hud/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/twilight-hud/pkg/errors"
	"github.com/yanqian/twilight-hud/pkg/metrics"
	"github.com/yanqian/twilight-hud/pkg/util"
)

const (
	defaultTheme    = "fantastique"
	defaultTemplate = "Raconte-moi une courte histoire de style %s."
)

// Service generates short stories and reads them aloud.
type Service struct {
	cfg      Config
	client   ChatClient
	counter  TokenCounter
	speakers []Speaker
	store    AudioStore
	narrator Narrator
	logger   *slog.Logger
	now      util.Clock

	mu     sync.RWMutex
	latest *Story
}

// NewService wires the story domain. A nil client disables generation;
// speakers are tried in order.
func NewService(cfg Config, client ChatClient, counter TokenCounter, speakers []Speaker, store AudioStore, narrator Narrator, logger *slog.Logger) *Service {
	if strings.TrimSpace(cfg.Theme) == "" {
		cfg.Theme = defaultTheme
	}
	if !strings.Contains(cfg.PromptTemplate, "%s") {
		cfg.PromptTemplate = defaultTemplate
	}
	return &Service{
		cfg:      cfg,
		client:   client,
		counter:  counter,
		speakers: speakers,
		store:    store,
		narrator: narrator,
		logger:   logger.With("component", "story.service"),
		now:      util.NowUTC,
	}
}

// Enabled reports whether an LLM client is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Tell generates a story for theme, or the configured theme when empty, and
// narrates it. Speech failures never fail the call.
func (s *Service) Tell(ctx context.Context, theme string) (Story, error) {
	if s.client == nil {
		return Story{}, apperrors.Wrap(apperrors.CodeConfig, "story generation is not configured", nil)
	}
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = s.cfg.Theme
	}
	prompt := fmt.Sprintf(s.cfg.PromptTemplate, theme)

	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    []chatgpt.Message{{Role: "user", Content: prompt}},
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return Story{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt request failed", err)
	}
	if len(completion.Choices) == 0 {
		return Story{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt returned no choices", nil)
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return Story{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt returned an empty story", nil)
	}

	st := Story{
		Theme:     theme,
		Prompt:    prompt,
		Text:      text,
		Usage:     s.usage(completion, prompt, text),
		CreatedAt: s.now(),
	}
	s.logger.Info("story generated", "theme", theme, "chars", len(text), "total_tokens", st.Usage.TotalTokens, "estimated", st.Usage.Estimated)

	st.Audio = s.speak(ctx, text)

	s.mu.Lock()
	latest := st
	s.latest = &latest
	s.mu.Unlock()
	return st, nil
}

// Latest returns the most recent story.
func (s *Service) Latest() (Story, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Story{}, false
	}
	return *s.latest, true
}

func (s *Service) usage(completion chatgpt.ChatCompletionResponse, prompt, text string) metrics.TokenUsage {
	if u := completion.Usage; u != nil && u.TotalTokens > 0 {
		return metrics.TokenUsage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	if s.counter == nil {
		return metrics.TokenUsage{}
	}
	promptTokens, err := s.counter.Count(prompt)
	if err != nil {
		s.logger.Debug("token estimation unavailable", "error", err)
		return metrics.TokenUsage{}
	}
	completionTokens, err := s.counter.Count(text)
	if err != nil {
		s.logger.Debug("token estimation unavailable", "error", err)
		return metrics.TokenUsage{}
	}
	return metrics.TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Estimated:        true,
	}
}

func (s *Service) speak(ctx context.Context, text string) *Audio {
	for _, speaker := range s.speakers {
		if !speaker.Available() {
			continue
		}
		data, err := speaker.Synthesize(ctx, text)
		if err != nil {
			s.logger.Warn("tts backend failed", "backend", speaker.Name(), "error", err)
			continue
		}
		audio := &Audio{Backend: speaker.Name()}
		if s.store != nil {
			key := fmt.Sprintf("stories/%s/%s.mp3", s.now().Format("2006-01-02"), uuid.NewString())
			location, err := s.store.Put(ctx, key, data, "audio/mpeg")
			if err != nil {
				s.logger.Warn("story audio archive failed", "backend", speaker.Name(), "error", err)
				return audio
			}
			audio.Location = location
		}
		if s.narrator != nil && audio.Location != "" {
			if err := s.narrator.Play(ctx, audio.Location); err != nil {
				s.logger.Warn("story narration failed", "location", audio.Location, "error", err)
			}
		}
		s.logger.Info("story narrated", "backend", audio.Backend, "location", audio.Location)
		return audio
	}
	s.logger.Warn("no TTS backend available")
	return nil
}
