package media

import "context"

// VideoKind is the search result kind that can be played.
const VideoKind = "youtube#video"

// Video is a playable search result.
type Video struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WatchURL is the page yt-dlp resolves into a stream.
func (v Video) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Format is a yt-dlp format selector.
type Format struct {
	Label    string
	Selector string
}

var (
	// PrimaryFormat prefers m4a or https audio streams.
	PrimaryFormat = Format{Label: "primary", Selector: "bestaudio[ext=m4a]/bestaudio[protocol^=https]/bestaudio/best"}
	// FallbackFormat accepts anything with audio.
	FallbackFormat = Format{Label: "fallback", Selector: "bestaudio/best"}
)

// SearchItem is a raw result from the search backend before filtering.
type SearchItem struct {
	Kind    string
	VideoID string
	Title   string
}

// Searcher queries the video catalogue.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchItem, error)
}

// Resolver turns a watch page into a direct stream URL.
type Resolver interface {
	Resolve(ctx context.Context, pageURL string, format Format) (string, error)
}

// Player drives the audio output.
type Player interface {
	Play(ctx context.Context, streamURL string) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
}

// State is the player state.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Status is the current player state and track.
type Status struct {
	State  State  `json:"state"`
	Video  *Video `json:"video,omitempty"`
	Format string `json:"format,omitempty"`
}

// PlayResult is delivered once a Play request resolves.
type PlayResult struct {
	Status Status
	Err    error
}

// Config tunes the media service.
type Config struct {
	MaxResults int
}
