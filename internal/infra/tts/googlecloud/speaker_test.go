package googlecloud

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	var got synthesizeRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(synthesizeResponse{AudioContent: base64.StdEncoding.EncodeToString([]byte("ID3audio"))})
	}))
	defer srv.Close()

	speaker := newSpeaker(srv.Client(), srv.URL, Voice{LanguageCode: "fr-FR", Name: "fr-FR-Neural2-A", Pitch: -2})
	require.True(t, speaker.Available())

	audio, err := speaker.Synthesize(context.Background(), "Bonsoir")
	require.NoError(t, err)
	require.Equal(t, []byte("ID3audio"), audio)
	require.Equal(t, "/text:synthesize", path)
	require.Equal(t, "Bonsoir", got.Input.Text)
	require.Equal(t, "fr-FR-Neural2-A", got.Voice.Name)
	require.Equal(t, "MP3", got.AudioConfig.AudioEncoding)
	require.InDelta(t, 1.0, got.AudioConfig.SpeakingRate, 1e-9)
	require.InDelta(t, -2.0, got.AudioConfig.Pitch, 1e-9)
}

func TestSynthesizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newSpeaker(srv.Client(), srv.URL, Voice{}).Synthesize(context.Background(), "x")
	require.ErrorContains(t, err, "status=403")
}

func TestNewSpeakerWithoutCredentials(t *testing.T) {
	speaker, err := NewSpeaker(context.Background(), "", "", Voice{})
	require.NoError(t, err)
	require.False(t, speaker.Available())
	_, err = speaker.Synthesize(context.Background(), "x")
	require.Error(t, err)
}

func TestNewSpeakerMissingFile(t *testing.T) {
	_, err := NewSpeaker(context.Background(), "/nonexistent/creds.json", "", Voice{})
	require.ErrorContains(t, err, "read google credentials")
}
