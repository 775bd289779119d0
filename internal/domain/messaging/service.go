package messaging

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/twilight-hud/pkg/errors"
	"github.com/yanqian/twilight-hud/pkg/util"
)

const defaultListLimit = 50

// Service schedules and sends SMS messages. Armed sends cannot be cancelled.
type Service struct {
	creds    Credentials
	sender   Sender
	repo     Repository
	deferrer Deferrer
	logger   *slog.Logger
	now      util.Clock
}

// NewService wires the messaging domain.
func NewService(creds Credentials, sender Sender, repo Repository, deferrer Deferrer, logger *slog.Logger) *Service {
	return &Service{
		creds:    creds,
		sender:   sender,
		repo:     repo,
		deferrer: deferrer,
		logger:   logger.With("component", "messaging.service"),
		now:      util.NowUTC,
	}
}

// Enabled reports whether credentials are complete and a sender is wired.
func (s *Service) Enabled() bool {
	return s.creds.Complete() && s.sender != nil
}

// Schedule persists body for delivery at at and arms a one-shot timer.
func (s *Service) Schedule(ctx context.Context, body string, at time.Time) (Message, error) {
	if err := s.checkConfig(); err != nil {
		return Message{}, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, apperrors.Wrap(apperrors.CodeInvalidInput, "message body cannot be empty", nil)
	}
	now := s.now()
	if !at.After(now) {
		return Message{}, apperrors.Wrap(apperrors.CodeInvalidInput, "scheduled time must be in the future", nil)
	}

	msg := s.newMessage(body, at.UTC(), now)
	if err := s.repo.Save(ctx, msg); err != nil {
		return Message{}, err
	}
	s.arm(msg, at.Sub(now))
	s.logger.Info("sms scheduled", "id", msg.ID, "send_at", msg.SendAt)
	return msg, nil
}

// SendNow delivers body immediately.
func (s *Service) SendNow(ctx context.Context, body string) (Message, error) {
	if err := s.checkConfig(); err != nil {
		return Message{}, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, apperrors.Wrap(apperrors.CodeInvalidInput, "message body cannot be empty", nil)
	}
	now := s.now()
	msg := s.newMessage(body, now, now)
	if err := s.repo.Save(ctx, msg); err != nil {
		return Message{}, err
	}
	msg = s.deliver(ctx, msg)
	if msg.Status == StatusFailed {
		return msg, apperrors.Wrap(apperrors.CodeSMS, "sms delivery failed: "+msg.Error, nil)
	}
	return msg, nil
}

// Restore re-arms pending messages persisted before a restart. Overdue
// messages fire immediately.
func (s *Service) Restore(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	for _, msg := range pending {
		delay := msg.SendAt.Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.arm(msg, delay)
	}
	if len(pending) > 0 {
		s.logger.Info("pending sms restored", "count", len(pending))
	}
	return len(pending), nil
}

// List returns the most recent messages.
func (s *Service) List(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *Service) checkConfig() error {
	if !s.Enabled() {
		return apperrors.Wrap(apperrors.CodeSMSConfig, "sms credentials are incomplete", nil)
	}
	return nil
}

func (s *Service) newMessage(body string, at, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Body:      body,
		To:        s.creds.To,
		SendAt:    at,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Service) arm(msg Message, delay time.Duration) {
	s.deferrer.After("sms:"+msg.ID, delay, func(ctx context.Context) {
		s.deliver(ctx, msg)
	})
}

func (s *Service) deliver(ctx context.Context, msg Message) Message {
	sid, err := s.sender.Send(ctx, Outgoing{From: s.creds.From, To: msg.To, Body: msg.Body})
	msg.UpdatedAt = s.now()
	if err != nil {
		msg.Status = StatusFailed
		msg.Error = err.Error()
		s.logger.Error("sms send failed", "id", msg.ID, "error", err)
	} else {
		msg.Status = StatusSent
		msg.SID = sid
		s.logger.Info("sms sent", "id", msg.ID, "sid", sid)
	}
	if uerr := s.repo.Update(ctx, msg); uerr != nil {
		s.logger.Warn("sms status update failed", "id", msg.ID, "error", uerr)
	}
	return msg
}
