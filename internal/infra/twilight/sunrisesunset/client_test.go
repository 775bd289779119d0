package sunrisesunset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twilight-hud/internal/domain/twilight"
)

const okBody = `{
  "results": {
    "sunrise": "2024-06-21T03:47:00+00:00",
    "sunset": "2024-06-21T19:58:00+00:00",
    "civil_twilight_begin": "2024-06-21T03:07:00+00:00",
    "civil_twilight_end": "2024-06-21T20:38:00+00:00",
    "nautical_twilight_begin": "2024-06-21T02:13:00+00:00",
    "nautical_twilight_end": "2024-06-21T21:32:00+00:00"
  },
  "status": "OK"
}`

func TestFetchParsesWindow(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"lat":       r.URL.Query().Get("lat"),
			"lng":       r.URL.Query().Get("lng"),
			"formatted": r.URL.Query().Get("formatted"),
			"date":      r.URL.Query().Get("date"),
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	client := NewClient(srv.URL, paris)

	window, err := client.Fetch(context.Background(), twilight.Query{Latitude: 48.8566, Longitude: 2.3522})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"lat": "48.8566", "lng": "2.3522", "formatted": "0", "date": "today"}, query)
	require.Equal(t, "22:38", window.CivilEnd.Format("15:04"))
	require.Equal(t, "23:32", window.NauticalEnd.Format("15:04"))
	require.Equal(t, paris, window.NauticalEnd.Location())
	require.True(t, window.NauticalStart.Equal(time.Date(2024, 6, 21, 2, 13, 0, 0, time.UTC)))
}

func TestFetchRejectsBadStatus(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		errPart string
	}{
		{name: "http error", status: http.StatusBadGateway, body: "bad gateway", errPart: "status=502"},
		{name: "api status", status: http.StatusOK, body: `{"results":"","status":"INVALID_REQUEST"}`, errPart: "INVALID_REQUEST"},
		{name: "malformed", status: http.StatusOK, body: `{"status":`, errPart: "decode twilight response"},
		{name: "api status with results", status: http.StatusOK, body: `{"results":{},"status":"INVALID_DATE"}`, errPart: "INVALID_DATE"},
		{name: "bad time", status: http.StatusOK, body: `{"results":{"civil_twilight_begin":"nope"},"status":"OK"}`, errPart: "civil_twilight_begin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.UTC).Fetch(context.Background(), twilight.Query{Date: "2024-06-21"})
			require.ErrorContains(t, err, tc.errPart)
		})
	}
}
