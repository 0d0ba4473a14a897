package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/noah-isme/negative-records-api/pkg/jobs"
)

// JobType identifies push deliveries on the job queue.
const JobType = "notification.push"

// Message is a notification pushed to external channels.
type Message struct {
	UserID int64  `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Sender delivers messages to an external channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// PushSender fans messages out to every configured shoutrrr URL.
type PushSender struct {
	sender *router.ServiceRouter
}

// NewPushSender builds a sender for the given shoutrrr service URLs.
func NewPushSender(urls []string, timeout time.Duration) (*PushSender, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one push URL is required")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("create push sender: %s", redact(err.Error()))
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))
	return &PushSender{sender: sender}, nil
}

// Send delivers msg and reports the first failing service.
func (p *PushSender) Send(_ context.Context, msg Message) error {
	params := stypes.Params{}
	if msg.Title != "" {
		params.SetTitle(msg.Title)
	}
	for _, err := range p.sender.Send(msg.Body, &params) {
		if err != nil {
			return fmt.Errorf("push notification: %s", redact(err.Error()))
		}
	}
	return nil
}

// JobHandler adapts a Sender to the job queue.
func JobHandler(sender Sender) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		if job.Type != JobType {
			return fmt.Errorf("unexpected job type %q", job.Type)
		}
		msg, ok := job.Payload.(Message)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", job.Payload, JobType)
		}
		return sender.Send(ctx, msg)
	}
}

var credentialPattern = regexp.MustCompile(`://[^/\s@]+@`)

// redact strips credentials embedded in service URLs.
func redact(s string) string {
	return credentialPattern.ReplaceAllString(s, "://***@")
}
