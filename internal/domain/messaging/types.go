package messaging

import (
	"context"
	"strings"
	"time"
)

// Status tracks a message through delivery.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message is an SMS scheduled or sent by the dashboard.
type Message struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	To        string    `json:"to"`
	SendAt    time.Time `json:"sendAt"`
	Status    Status    `json:"status"`
	SID       string    `json:"sid,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials are the account and numbers needed to send. All four are required.
type Credentials struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// Complete reports whether every credential is set.
func (c Credentials) Complete() bool {
	for _, v := range []string{c.AccountSID, c.AuthToken, c.From, c.To} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Outgoing is a single send request.
type Outgoing struct {
	From string
	To   string
	Body string
}

// Sender delivers an SMS and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Outgoing) (string, error)
}

// Repository persists messages so pending sends survive a restart.
type Repository interface {
	Save(ctx context.Context, msg Message) error
	Update(ctx context.Context, msg Message) error
	ListPending(ctx context.Context) ([]Message, error)
	List(ctx context.Context, limit int) ([]Message, error)
}

// Deferrer runs fn once after delay on the scheduling goroutine.
type Deferrer interface {
	After(name string, delay time.Duration, fn func(ctx context.Context))
}
