package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/twilight-hud/internal/domain/media"
	"github.com/yanqian/twilight-hud/internal/domain/messaging"
	"github.com/yanqian/twilight-hud/internal/domain/prompt"
	"github.com/yanqian/twilight-hud/internal/domain/story"
	"github.com/yanqian/twilight-hud/internal/domain/twilight"
)

// TwilightService is the twilight state the API reads and refreshes.
type TwilightService interface {
	Snapshot() twilight.Snapshot
	Refresh(ctx context.Context) (twilight.Snapshot, twilight.Outcome, error)
}

// MediaService searches and controls playback.
type MediaService interface {
	Search(ctx context.Context, query string) ([]media.Video, error)
	Play(ctx context.Context, video media.Video) <-chan media.PlayResult
	Pause(ctx context.Context) (media.Status, error)
	Resume(ctx context.Context) (media.Status, error)
	Stop(ctx context.Context) (media.Status, error)
	Status() media.Status
}

// MessagingService schedules and sends SMS.
type MessagingService interface {
	Schedule(ctx context.Context, body string, at time.Time) (messaging.Message, error)
	SendNow(ctx context.Context, body string) (messaging.Message, error)
	List(ctx context.Context, limit int) ([]messaging.Message, error)
}

// StoryService generates stories.
type StoryService interface {
	Tell(ctx context.Context, theme string) (story.Story, error)
	Latest() (story.Story, bool)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	twilightSvc TwilightService
	mediaSvc    MediaService
	messageSvc  MessagingService
	storySvc    StoryService
	logger      *slog.Logger
	now         func() time.Time
}

// NewHandler constructs the root HTTP handler.
func NewHandler(twilightSvc TwilightService, mediaSvc MediaService, messageSvc MessagingService, storySvc StoryService, logger *slog.Logger) *Handler {
	return &Handler{
		twilightSvc: twilightSvc,
		mediaSvc:    mediaSvc,
		messageSvc:  messageSvc,
		storySvc:    storySvc,
		logger:      logger.With("component", "http.handler"),
		now:         time.Now,
	}
}

// HUDResponse is the aggregated dashboard state.
type HUDResponse struct {
	Twilight twilight.Snapshot `json:"twilight"`
	Media    media.Status      `json:"media"`
	Story    *story.Story      `json:"story,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HUD returns the current dashboard snapshot.
func (h *Handler) HUD(c *gin.Context) {
	resp := HUDResponse{
		Twilight: h.twilightSvc.Snapshot(),
		Media:    h.mediaSvc.Status(),
	}
	if st, ok := h.storySvc.Latest(); ok {
		resp.Story = &st
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshTwilight fetches twilight data immediately.
func (h *Handler) RefreshTwilight(c *gin.Context) {
	snap, outcome, err := h.twilightSvc.Refresh(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome.String(), "twilight": snap})
}

type searchRequest struct {
	Query string `json:"query"`
}

// SearchMedia searches playable videos.
func (h *Handler) SearchMedia(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	videos, err := h.mediaSvc.Search(c.Request.Context(), req.Query)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

type playRequest struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
}

// PlayMedia resolves and starts a video's audio, waiting for the outcome.
func (h *Handler) PlayMedia(c *gin.Context) {
	var req playRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	ctx := c.Request.Context()
	select {
	case res := <-h.mediaSvc.Play(ctx, media.Video{ID: req.VideoID, Title: req.Title}):
		if res.Err != nil {
			abortWithError(c, fromAppError(res.Err))
			return
		}
		c.JSON(http.StatusOK, res.Status)
	case <-ctx.Done():
		abortWithError(c, NewHTTPError(http.StatusGatewayTimeout, "timeout", "playback did not start in time", ctx.Err()))
	}
}

// PauseMedia pauses playback.
func (h *Handler) PauseMedia(c *gin.Context) {
	h.control(c, h.mediaSvc.Pause)
}

// ResumeMedia resumes playback.
func (h *Handler) ResumeMedia(c *gin.Context) {
	h.control(c, h.mediaSvc.Resume)
}

// StopMedia stops playback.
func (h *Handler) StopMedia(c *gin.Context) {
	h.control(c, h.mediaSvc.Stop)
}

func (h *Handler) control(c *gin.Context, fn func(context.Context) (media.Status, error)) {
	status, err := fn(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, status)
}

type scheduleRequest struct {
	Body         string     `json:"body"`
	SendAt       *time.Time `json:"sendAt"`
	DelaySeconds int        `json:"delaySeconds"`
}

// ScheduleMessage arms a deferred SMS.
func (h *Handler) ScheduleMessage(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	var at time.Time
	switch {
	case req.SendAt != nil:
		at = *req.SendAt
	case req.DelaySeconds > 0:
		at = h.now().Add(time.Duration(req.DelaySeconds) * time.Second)
	default:
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "sendAt or delaySeconds is required", nil))
		return
	}
	msg, err := h.messageSvc.Schedule(c.Request.Context(), req.Body, at)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusAccepted, msg)
}

type sendRequest struct {
	Body string `json:"body"`
}

// SendMessage sends an SMS immediately.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	msg, err := h.messageSvc.SendNow(c.Request.Context(), req.Body)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, msg)
}

// ListMessages returns recent messages.
func (h *Handler) ListMessages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "limit must be a non-negative integer", err))
			return
		}
		limit = n
	}
	msgs, err := h.messageSvc.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type storyRequest struct {
	Theme string `json:"theme"`
}

// TellStory generates and narrates a story.
func (h *Handler) TellStory(c *gin.Context) {
	var req storyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	}
	st, err := h.storySvc.Tell(c.Request.Context(), req.Theme)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, st)
}

type promptRequest struct {
	Prompt any `json:"prompt"`
}

// Acknowledge runs the sanitize and acknowledge pipeline.
func (h *Handler) Acknowledge(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if _, err := prompt.SanitizeValue(req.Prompt); err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, prompt.Pipeline(req.Prompt.(string)))
}
