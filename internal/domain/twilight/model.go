package twilight

import (
	"context"
	"time"
)

// Window is the civil and nautical twilight range for one day and location.
// It is only ever replaced as a whole.
type Window struct {
	CivilStart    time.Time `json:"civilStart"`
	CivilEnd      time.Time `json:"civilEnd"`
	NauticalStart time.Time `json:"nauticalStart"`
	NauticalEnd   time.Time `json:"nauticalEnd"`
}

// In returns the window converted to loc.
func (w Window) In(loc *time.Location) Window {
	return Window{
		CivilStart:    w.CivilStart.In(loc),
		CivilEnd:      w.CivilEnd.In(loc),
		NauticalStart: w.NauticalStart.In(loc),
		NauticalEnd:   w.NauticalEnd.In(loc),
	}
}

// Query identifies the day and place to fetch twilight for.
type Query struct {
	Latitude  float64
	Longitude float64
	// Date is YYYY-MM-DD; empty lets the source pick today.
	Date string
}

// Source fetches a twilight window from upstream.
type Source interface {
	Fetch(ctx context.Context, q Query) (Window, error)
}

// Cached is the persisted last-known window.
type Cached struct {
	Window    Window    `json:"window"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// CacheStore persists the last successful window across restarts.
type CacheStore interface {
	Load(ctx context.Context) (Cached, bool, error)
	Save(ctx context.Context, cached Cached) error
}

// Alert is raised when nautical twilight is a threshold number of minutes away.
type Alert struct {
	Minutes     int       `json:"minutes"`
	NauticalEnd time.Time `json:"nauticalEnd"`
	RaisedAt    time.Time `json:"raisedAt"`
}

// AlertSink receives raised alerts.
type AlertSink interface {
	Notify(ctx context.Context, alert Alert)
}

// Snapshot is the display state read by the control API and the terminal HUD.
type Snapshot struct {
	Clock           string     `json:"clock"`
	Date            string     `json:"date"`
	DayProgress     int        `json:"dayProgress"`
	Window          *Window    `json:"window,omitempty"`
	Civil           string     `json:"civil,omitempty"`
	Nautical        string     `json:"nautical,omitempty"`
	Countdown       string     `json:"countdown,omitempty"`
	NauticalReached bool       `json:"nauticalReached"`
	FetchedAt       *time.Time `json:"fetchedAt,omitempty"`
	Failures        int        `json:"failures"`
	Stale           bool       `json:"stale"`
	NextFetchIn     string     `json:"nextFetchIn,omitempty"`
	Error           string     `json:"error,omitempty"`
	LastAlert       *Alert     `json:"lastAlert,omitempty"`
}

// Config wires the location and fetch policy for the twilight domain.
type Config struct {
	Latitude    float64
	Longitude   float64
	Location    *time.Location
	Retry       RetryPolicy
	MinInterval time.Duration
	BackoffStep time.Duration
	MaxInterval time.Duration
	Thresholds  []int
}
