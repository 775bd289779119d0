package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "sentences", text: "Il était une fois. Un dragon!", limit: 100, want: []string{"Il était une fois.", "Un dragon!"}},
		{name: "words", text: "un deux trois quatre", limit: 9, want: []string{"un deux", "trois", "quatre"}},
		{name: "long word", text: "abcdefghij", limit: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "blank", text: "   ", limit: 10, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitText(tc.text, tc.limit)
			require.Equal(t, tc.want, got)
			for _, chunk := range got {
				require.LessOrEqual(t, utf8.RuneCountInString(chunk), tc.limit)
			}
		})
	}
}

func TestSynthesizeConcatenatesChunks(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		mu.Unlock()
		require.Equal(t, "fr", r.URL.Query().Get("tl"))
		_, _ = w.Write([]byte("[" + r.URL.Query().Get("idx") + "]"))
	}))
	defer srv.Close()

	speaker := NewSpeaker(true, "fr", srv.URL)
	audio, err := speaker.Synthesize(context.Background(), "Bonsoir. "+strings.Repeat("a ", 60))
	require.NoError(t, err)
	require.Equal(t, "[0][1][2]", string(audio))
	require.Equal(t, "Bonsoir.", queries[0])
}

func TestSynthesizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewSpeaker(true, "", srv.URL).Synthesize(context.Background(), "Bonsoir")
	require.ErrorContains(t, err, "status=429")
}
