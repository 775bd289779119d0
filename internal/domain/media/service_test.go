package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/twilight-hud/pkg/errors"
)

type stubSearcher struct {
	items    []SearchItem
	err      error
	lastMax  int
	lastTerm string
}

func (s *stubSearcher) Search(_ context.Context, query string, maxResults int) ([]SearchItem, error) {
	s.lastTerm = query
	s.lastMax = maxResults
	return s.items, s.err
}

type stubResolver struct {
	mu      sync.Mutex
	urls    map[string]string
	formats []string
	gate    chan struct{}
}

func (r *stubResolver) Resolve(ctx context.Context, pageURL string, format Format) (string, error) {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats = append(r.formats, format.Label)
	if u, ok := r.urls[format.Label]; ok {
		return u, nil
	}
	return "", errors.New("format not available for " + pageURL)
}

type stubPlayer struct {
	mu      sync.Mutex
	played  []string
	actions []string
}

func (p *stubPlayer) Play(_ context.Context, streamURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, streamURL)
	return nil
}

func (p *stubPlayer) record(action string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, action)
	return nil
}

func (p *stubPlayer) Pause(context.Context) error  { return p.record("pause") }
func (p *stubPlayer) Resume(context.Context) error { return p.record("resume") }
func (p *stubPlayer) Stop(context.Context) error   { return p.record("stop") }

func newTestService(searcher Searcher, resolver Resolver, player Player) *Service {
	return NewService(Config{}, searcher, resolver, player, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func awaitResult(t *testing.T, ch <-chan PlayResult) PlayResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("play result not delivered")
		return PlayResult{}
	}
}

func TestSearchFiltersNonVideos(t *testing.T) {
	searcher := &stubSearcher{items: []SearchItem{
		{Kind: VideoKind, VideoID: "abc", Title: "Lofi"},
		{Kind: "youtube#channel", VideoID: "", Title: "Channel"},
		{Kind: VideoKind, VideoID: " ", Title: "Broken"},
		{Kind: VideoKind, VideoID: "def", Title: "Jazz"},
	}}
	svc := newTestService(searcher, nil, nil)

	videos, err := svc.Search(context.Background(), "  lofi  ")
	require.NoError(t, err)
	require.Equal(t, []Video{{ID: "abc", Title: "Lofi"}, {ID: "def", Title: "Jazz"}}, videos)
	require.Equal(t, "lofi", searcher.lastTerm)
	require.Equal(t, 10, searcher.lastMax)
}

func TestSearchErrors(t *testing.T) {
	_, err := newTestService(&stubSearcher{}, nil, nil).Search(context.Background(), " ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = newTestService(nil, nil, nil).Search(context.Background(), "jazz")
	require.True(t, apperrors.IsCode(err, apperrors.CodeConfig))

	_, err = newTestService(&stubSearcher{err: errors.New("quota")}, nil, nil).Search(context.Background(), "jazz")
	require.True(t, apperrors.IsCode(err, apperrors.CodeMediaUnavailable))
}

func TestPlayFallsBackToSecondFormat(t *testing.T) {
	resolver := &stubResolver{urls: map[string]string{"fallback": "https://cdn/audio"}}
	player := &stubPlayer{}
	svc := newTestService(nil, resolver, player)

	res := awaitResult(t, svc.Play(context.Background(), Video{ID: "abc", Title: "Lofi"}))
	require.NoError(t, res.Err)
	require.Equal(t, StatePlaying, res.Status.State)
	require.Equal(t, "fallback", res.Status.Format)
	require.Equal(t, []string{"primary", "fallback"}, resolver.formats)
	require.Equal(t, []string{"https://cdn/audio"}, player.played)
}

func TestPlayBothFormatsFail(t *testing.T) {
	svc := newTestService(nil, &stubResolver{}, &stubPlayer{})

	res := awaitResult(t, svc.Play(context.Background(), Video{ID: "abc"}))
	require.True(t, apperrors.IsCode(res.Err, apperrors.CodeMediaUnavailable))
	require.Equal(t, StateStopped, svc.Status().State)
}

func TestPlayRequiresConfiguration(t *testing.T) {
	res := awaitResult(t, newTestService(nil, nil, nil).Play(context.Background(), Video{ID: "abc"}))
	require.True(t, apperrors.IsCode(res.Err, apperrors.CodeConfig))

	res = awaitResult(t, newTestService(nil, &stubResolver{}, &stubPlayer{}).Play(context.Background(), Video{}))
	require.True(t, apperrors.IsCode(res.Err, apperrors.CodeInvalidInput))
}

func TestStopSupersedesPendingResolution(t *testing.T) {
	resolver := &stubResolver{urls: map[string]string{"primary": "https://cdn/a"}, gate: make(chan struct{})}
	player := &stubPlayer{}
	svc := newTestService(nil, resolver, player)

	ch := svc.Play(context.Background(), Video{ID: "abc"})
	_, err := svc.Stop(context.Background())
	require.NoError(t, err)
	close(resolver.gate)

	res := awaitResult(t, ch)
	require.Error(t, res.Err)
	require.Empty(t, player.played)
	require.Equal(t, StateStopped, svc.Status().State)
}

func TestPauseResumeStop(t *testing.T) {
	resolver := &stubResolver{urls: map[string]string{"primary": "https://cdn/a"}}
	player := &stubPlayer{}
	svc := newTestService(nil, resolver, player)

	status, err := svc.Pause(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateStopped, status.State)

	require.NoError(t, awaitResult(t, svc.Play(context.Background(), Video{ID: "abc"})).Err)

	status, err = svc.Pause(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatePaused, status.State)

	status, err = svc.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatePlaying, status.State)
	require.Equal(t, "abc", status.Video.ID)

	status, err = svc.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateStopped, status.State)
	require.Nil(t, status.Video)
	require.Equal(t, []string{"pause", "resume", "stop"}, player.actions)
}
