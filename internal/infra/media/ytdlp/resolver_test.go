package ytdlp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twilight-hud/internal/domain/media"
)

func TestResolveUsesTopLevelURL(t *testing.T) {
	var gotName string
	var gotArgs []string
	r := &Resolver{binary: "yt-dlp", run: func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte(`{"url":"https://cdn/a.m4a","formats":[{"url":"https://cdn/other"}]}`), nil
	}}

	u, err := r.Resolve(context.Background(), "https://www.youtube.com/watch?v=abc", media.PrimaryFormat)
	require.NoError(t, err)
	require.Equal(t, "https://cdn/a.m4a", u)
	require.Equal(t, "yt-dlp", gotName)
	require.Contains(t, gotArgs, media.PrimaryFormat.Selector)
	require.Contains(t, gotArgs, "--no-check-certificates")
	require.Contains(t, gotArgs, "youtube:player_client=web")
	require.Equal(t, "https://www.youtube.com/watch?v=abc", gotArgs[len(gotArgs)-1])
}

func TestResolveFallsBackToFirstFormat(t *testing.T) {
	r := &Resolver{run: func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{"formats":[{"url":"https://cdn/first"},{"url":"https://cdn/second"}]}`), nil
	}}

	u, err := r.Resolve(context.Background(), "page", media.FallbackFormat)
	require.NoError(t, err)
	require.Equal(t, "https://cdn/first", u)
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		name string
		out  string
		err  error
		msg  string
	}{
		{name: "command", err: errors.New("exit status 1"), msg: "yt-dlp fallback format"},
		{name: "json", out: "not json", msg: "decode yt-dlp output"},
		{name: "empty", out: `{"formats":[]}`, msg: "no stream url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Resolver{run: func(context.Context, string, ...string) ([]byte, error) {
				return []byte(tc.out), tc.err
			}}
			_, err := r.Resolve(context.Background(), "page", media.FallbackFormat)
			require.ErrorContains(t, err, tc.msg)
		})
	}
}
