package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipcart/internal/config"
)

const userAgent = "Clipcart-Go/0.1.0"

// Event identifies a pipeline milestone worth notifying about.
type Event string

const (
	EventDownloadCompleted Event = "download_completed"
	EventRenderCompleted   Event = "render_completed"
	EventUploadCompleted   Event = "upload_completed"
	EventQuotaExhausted    Event = "quota_exhausted"
	EventPipelineError     Event = "pipeline_error"
	EventTest              Event = "test"
)

// Payload carries event-specific values used to format the message.
type Payload map[string]string

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

type ntfyService struct {
	endpoint string
	client   *http.Client
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	return n.send(ctx, formatMessage(event, payload))
}

func formatMessage(event Event, payload Payload) message {
	get := func(key string) string { return strings.TrimSpace(payload[key]) }

	switch event {
	case EventDownloadCompleted:
		return message{
			title: "Clipcart - Downloaded",
			body:  fmt.Sprintf("Video acquired: %s", get("title")),
			tags:  []string{"clipcart", "download", "completed"},
		}
	case EventRenderCompleted:
		return message{
			title: "Clipcart - Rendered",
			body:  fmt.Sprintf("Clip ready for %s: %s", get("channel"), get("title")),
			tags:  []string{"clipcart", "render", "completed"},
		}
	case EventUploadCompleted:
		body := fmt.Sprintf("Published on %s: %s", get("channel"), get("title"))
		if postURL := get("post_url"); postURL != "" {
			body = fmt.Sprintf("%s\n%s", body, postURL)
		}
		return message{
			title:    "Clipcart - Published",
			body:     body,
			tags:     []string{"clipcart", "upload", "completed"},
			priority: "high",
		}
	case EventQuotaExhausted:
		return message{
			title: "Clipcart - Quota Exhausted",
			body:  fmt.Sprintf("Channel %s hit its daily upload limit", get("channel")),
			tags:  []string{"clipcart", "upload", "quota"},
		}
	case EventPipelineError:
		body := "Pipeline error"
		if detail := get("error"); detail != "" {
			body = fmt.Sprintf("Pipeline error: %s", detail)
		}
		if stageName := get("stage"); stageName != "" {
			body = fmt.Sprintf("%s (stage: %s)", body, stageName)
		}
		return message{
			title:    "Clipcart - Error",
			body:     body,
			tags:     []string{"clipcart", "error", "alert"},
			priority: "high",
		}
	case EventTest:
		return message{
			title:    "Clipcart - Test",
			body:     "Notification system test",
			tags:     []string{"clipcart", "test"},
			priority: "low",
		}
	default:
		return message{
			title: "Clipcart",
			body:  string(event),
			tags:  []string{"clipcart"},
		}
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
