package googlecloud

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yanqian/twilight-hud/internal/domain/story"
)

const (
	defaultBaseURL = "https://texttospeech.googleapis.com/v1"
	cloudScope     = "https://www.googleapis.com/auth/cloud-platform"
)

// Voice selects the synthesized voice.
type Voice struct {
	LanguageCode string
	Name         string
	SpeakingRate float64
	Pitch        float64
}

// Speaker calls Google Cloud Text-to-Speech with service account credentials.
type Speaker struct {
	httpClient *http.Client
	baseURL    string
	voice      Voice
}

// NewSpeaker loads the service account file. Without a file the speaker is
// returned unavailable.
func NewSpeaker(ctx context.Context, credentialsFile, baseURL string, voice Voice) (*Speaker, error) {
	if strings.TrimSpace(credentialsFile) == "" {
		return &Speaker{voice: voice}, nil
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, cloudScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	return newSpeaker(oauth2.NewClient(ctx, creds.TokenSource), baseURL, voice), nil
}

func newSpeaker(httpClient *http.Client, baseURL string, voice Voice) *Speaker {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if voice.SpeakingRate == 0 {
		voice.SpeakingRate = 1
	}
	return &Speaker{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		voice:      voice,
	}
}

// Name identifies the backend in logs and story audio.
func (s *Speaker) Name() string { return "google-cloud" }

// Available reports whether credentials were loaded.
func (s *Speaker) Available() bool { return s.httpClient != nil }

// Synthesize returns MP3 audio for text.
func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !s.Available() {
		return nil, fmt.Errorf("google cloud tts credentials not configured")
	}
	payload, err := json.Marshal(synthesizeRequest{
		Input: input{Text: text},
		Voice: voiceSelection{LanguageCode: s.voice.LanguageCode, Name: s.voice.Name},
		AudioConfig: audioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  s.voice.SpeakingRate,
			Pitch:         s.voice.Pitch,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/text:synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("tts request error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode tts response: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned empty audio")
	}
	return audio, nil
}

type synthesizeRequest struct {
	Input       input          `json:"input"`
	Voice       voiceSelection `json:"voice"`
	AudioConfig audioConfig    `json:"audioConfig"`
}

type input struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
}

type audioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate,omitempty"`
	Pitch         float64 `json:"pitch,omitempty"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

var _ story.Speaker = (*Speaker)(nil)
