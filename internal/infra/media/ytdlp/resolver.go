package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/yanqian/twilight-hud/internal/domain/media"
)

const defaultBinary = "yt-dlp"

// runFunc executes a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Resolver extracts direct audio stream URLs by running yt-dlp.
type Resolver struct {
	binary string
	run    runFunc
}

// NewResolver builds a resolver using binary, or yt-dlp from PATH.
func NewResolver(binary string) *Resolver {
	if strings.TrimSpace(binary) == "" {
		binary = defaultBinary
	}
	return &Resolver{binary: binary, run: runCommand}
}

// Resolve implements media.Resolver.
func (r *Resolver) Resolve(ctx context.Context, pageURL string, format media.Format) (string, error) {
	args := []string{
		"--dump-single-json",
		"--no-playlist",
		"--no-warnings",
		"--no-check-certificates",
		"--extractor-args", "youtube:player_client=web",
		"-f", format.Selector,
		pageURL,
	}
	out, err := r.run(ctx, r.binary, args...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp %s format: %w", format.Label, err)
	}

	var info videoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return "", fmt.Errorf("decode yt-dlp output: %w", err)
	}
	if streamURL := info.streamURL(); streamURL != "" {
		return streamURL, nil
	}
	return "", errors.New("yt-dlp returned no stream url")
}

type videoInfo struct {
	URL     string `json:"url"`
	Formats []struct {
		URL string `json:"url"`
	} `json:"formats"`
}

func (i videoInfo) streamURL() string {
	if i.URL != "" {
		return i.URL
	}
	if len(i.Formats) > 0 {
		return i.Formats[0].URL
	}
	return ""
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 512 {
			msg = msg[:512]
		}
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

var _ media.Resolver = (*Resolver)(nil)
