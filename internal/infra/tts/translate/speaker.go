package translate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yanqian/twilight-hud/internal/domain/story"
)

const (
	defaultBaseURL = "https://translate.google.com/translate_tts"
	maxChunkRunes  = 100
)

// Speaker uses the free Google Translate speech endpoint. Long text is split
// into chunks and the MP3 segments are concatenated.
type Speaker struct {
	language   string
	baseURL    string
	enabled    bool
	httpClient *http.Client
}

// NewSpeaker builds the fallback backend for language.
func NewSpeaker(enabled bool, language, baseURL string) *Speaker {
	if strings.TrimSpace(language) == "" {
		language = "fr"
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Speaker{
		language: language,
		baseURL:  baseURL,
		enabled:  enabled,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Name identifies the backend.
func (s *Speaker) Name() string { return "translate" }

// Available reports whether the backend is enabled.
func (s *Speaker) Available() bool { return s.enabled }

// Synthesize returns MP3 audio for text.
func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	chunks := splitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}
	var out bytes.Buffer
	for i, chunk := range chunks {
		if err := s.fetchChunk(ctx, chunk, i, len(chunks), &out); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

func (s *Speaker) fetchChunk(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", chunk)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("idx", fmt.Sprint(idx))
	params.Set("total", fmt.Sprint(total))
	params.Set("textlen", fmt.Sprint(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build translate tts request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("translate tts request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("translate tts error: status=%d chunk=%d", resp.StatusCode, idx)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read translate tts audio: %w", err)
	}
	return nil
}

// splitText cuts text into chunks of at most limit runes, preferring sentence
// ends, then word boundaries.
func splitText(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
		}
		need := utf8.RuneCountInString(word)
		if current.Len() > 0 {
			need++
		}
		if utf8.RuneCountInString(current.String())+need > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
		if strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?") {
			flush()
		}
	}
	flush()
	return chunks
}

var _ story.Speaker = (*Speaker)(nil)
