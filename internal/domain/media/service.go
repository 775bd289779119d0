package media

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	apperrors "github.com/yanqian/twilight-hud/pkg/errors"
)

const (
	defaultMaxResults = 10
	resolveTimeout    = 90 * time.Second
)

// Service searches videos and plays their audio.
type Service struct {
	cfg      Config
	searcher Searcher
	resolver Resolver
	player   Player
	logger   *slog.Logger

	mu         sync.Mutex
	status     Status
	generation uint64
}

// NewService wires the media domain. A nil searcher disables search and a nil
// resolver or player disables playback.
func NewService(cfg Config, searcher Searcher, resolver Resolver, player Player, logger *slog.Logger) *Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	return &Service{
		cfg:      cfg,
		searcher: searcher,
		resolver: resolver,
		player:   player,
		logger:   logger.With("component", "media.service"),
		status:   Status{State: StateStopped},
	}
}

// Search returns the playable videos matching query.
func (s *Service) Search(ctx context.Context, query string) ([]Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "search query cannot be empty", nil)
	}
	if s.searcher == nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, "video search is not configured", nil)
	}

	items, err := s.searcher.Search(ctx, query, s.cfg.MaxResults)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMediaUnavailable, "video search failed", err)
	}

	videos := make([]Video, 0, len(items))
	skipped := 0
	for _, item := range items {
		if item.Kind != VideoKind || strings.TrimSpace(item.VideoID) == "" {
			skipped++
			continue
		}
		videos = append(videos, Video{ID: item.VideoID, Title: item.Title})
	}
	if len(videos) == 0 {
		s.logger.Warn("video search returned nothing playable", "query", query, "skipped", skipped)
		return videos, nil
	}
	s.logger.Info("video search complete", "query", query, "kept", len(videos), "skipped", skipped)
	return videos, nil
}

// Play resolves the video's stream on a worker goroutine and starts playback.
// The returned channel receives exactly one result. A later Play or Stop
// supersedes a resolution still in flight.
func (s *Service) Play(ctx context.Context, video Video) <-chan PlayResult {
	out := make(chan PlayResult, 1)
	if strings.TrimSpace(video.ID) == "" {
		out <- PlayResult{Err: apperrors.Wrap(apperrors.CodeInvalidInput, "video id cannot be empty", nil)}
		return out
	}
	if s.resolver == nil || s.player == nil {
		out <- PlayResult{Err: apperrors.Wrap(apperrors.CodeConfig, "playback is not configured", nil)}
		return out
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	go func() {
		out <- s.resolveAndPlay(ctx, video, gen)
	}()
	return out
}

func (s *Service) resolveAndPlay(ctx context.Context, video Video, gen uint64) PlayResult {
	resolveCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	streamURL, format, err := s.resolve(resolveCtx, video)
	if err != nil {
		s.logger.Error("stream resolution failed", "video_id", video.ID, "error", err)
		return PlayResult{Status: s.Status(), Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Info("stream resolved for superseded request", "video_id", video.ID)
		return PlayResult{Status: s.status, Err: apperrors.Wrap(apperrors.CodeMediaUnavailable, "playback request superseded", nil)}
	}
	if err := s.player.Play(ctx, streamURL); err != nil {
		return PlayResult{Status: s.status, Err: apperrors.Wrap(apperrors.CodeMediaUnavailable, "player failed to start", err)}
	}
	v := video
	s.setStateLocked(Status{State: StatePlaying, Video: &v, Format: format.Label})
	return PlayResult{Status: s.status}
}

func (s *Service) resolve(ctx context.Context, video Video) (string, Format, error) {
	var lastErr error
	for _, format := range []Format{PrimaryFormat, FallbackFormat} {
		streamURL, err := s.resolver.Resolve(ctx, video.WatchURL(), format)
		if err == nil && streamURL != "" {
			return streamURL, format, nil
		}
		if err == nil {
			err = apperrors.Wrap(apperrors.CodeMediaUnavailable, "resolver returned no stream url", nil)
		}
		lastErr = err
		s.logger.Warn("stream resolution attempt failed", "video_id", video.ID, "format", format.Label, "error", err)
	}
	return "", Format{}, apperrors.Wrap(apperrors.CodeMediaUnavailable, "no playable stream", lastErr)
}

// Pause pauses a playing track; otherwise it is a no-op.
func (s *Service) Pause(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State != StatePlaying {
		return s.status, nil
	}
	if err := s.player.Pause(ctx); err != nil {
		return s.status, apperrors.Wrap(apperrors.CodeMediaUnavailable, "pause failed", err)
	}
	next := s.status
	next.State = StatePaused
	s.setStateLocked(next)
	return s.status, nil
}

// Resume resumes a paused track; otherwise it is a no-op.
func (s *Service) Resume(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State != StatePaused {
		return s.status, nil
	}
	if err := s.player.Resume(ctx); err != nil {
		return s.status, apperrors.Wrap(apperrors.CodeMediaUnavailable, "resume failed", err)
	}
	next := s.status
	next.State = StatePlaying
	s.setStateLocked(next)
	return s.status, nil
}

// Stop stops playback and cancels the hand-off of any pending resolution.
func (s *Service) Stop(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.status.State == StateStopped {
		return s.status, nil
	}
	if s.player != nil {
		if err := s.player.Stop(ctx); err != nil {
			return s.status, apperrors.Wrap(apperrors.CodeMediaUnavailable, "stop failed", err)
		}
	}
	s.setStateLocked(Status{State: StateStopped})
	return s.status, nil
}

// Status returns the current player state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) setStateLocked(next Status) {
	if next.State != s.status.State {
		s.logger.Info("player state changed", "from", s.status.State, "to", next.State)
	}
	s.status = next
}
