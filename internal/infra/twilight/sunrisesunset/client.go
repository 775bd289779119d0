package sunrisesunset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/twilight-hud/internal/domain/twilight"
)

const defaultBaseURL = "https://api.sunrise-sunset.org/json"

// Client fetches twilight times from sunrise-sunset.org.
type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
}

// NewClient builds an API client converting results into loc.
func NewClient(baseURL string, loc *time.Location) *Client {
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL: strings.TrimRight(u, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		loc: loc,
	}
}

// Fetch implements twilight.Source.
func (c *Client) Fetch(ctx context.Context, q twilight.Query) (twilight.Window, error) {
	date := strings.TrimSpace(q.Date)
	if date == "" {
		date = "today"
	}
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("formatted", "0")
	params.Set("date", date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return twilight.Window{}, fmt.Errorf("build twilight request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return twilight.Window{}, fmt.Errorf("twilight request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return twilight.Window{}, fmt.Errorf("twilight request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return twilight.Window{}, fmt.Errorf("decode twilight response: %w", err)
	}
	if raw.Status != "OK" {
		return twilight.Window{}, fmt.Errorf("twilight api error: status=%s", raw.Status)
	}
	// Error responses carry an empty string instead of an object.
	var res results
	if err := json.Unmarshal(raw.Results, &res); err != nil {
		return twilight.Window{}, fmt.Errorf("decode twilight results: %w", err)
	}
	return res.window(c.loc)
}

type apiResponse struct {
	Results json.RawMessage `json:"results"`
	Status  string          `json:"status"`
}

type results struct {
	CivilTwilightBegin    string `json:"civil_twilight_begin"`
	CivilTwilightEnd      string `json:"civil_twilight_end"`
	NauticalTwilightBegin string `json:"nautical_twilight_begin"`
	NauticalTwilightEnd   string `json:"nautical_twilight_end"`
}

func (r results) window(loc *time.Location) (twilight.Window, error) {
	fields := []struct {
		name  string
		value string
		dst   *time.Time
	}{
		{name: "civil_twilight_begin", value: r.CivilTwilightBegin},
		{name: "civil_twilight_end", value: r.CivilTwilightEnd},
		{name: "nautical_twilight_begin", value: r.NauticalTwilightBegin},
		{name: "nautical_twilight_end", value: r.NauticalTwilightEnd},
	}
	var w twilight.Window
	fields[0].dst = &w.CivilStart
	fields[1].dst = &w.CivilEnd
	fields[2].dst = &w.NauticalStart
	fields[3].dst = &w.NauticalEnd

	for _, f := range fields {
		ts, err := time.Parse(time.RFC3339, f.value)
		if err != nil {
			return twilight.Window{}, fmt.Errorf("parse %s %q: %w", f.name, f.value, err)
		}
		*f.dst = ts.In(loc)
	}
	return w, nil
}

var _ twilight.Source = (*Client)(nil)
