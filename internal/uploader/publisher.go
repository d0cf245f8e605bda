package uploader

import (
	"context"
	"errors"
	"strings"
	"time"

	"clipcart/internal/services"
)

// Failure kinds recorded on upload logs. Auth and duplicate failures are
// terminal: the scheduler never retries them without operator intervention.
const (
	KindQuota     = "quota"
	KindAuth      = "auth"
	KindDuplicate = "duplicate"
	KindUnknown   = "unknown"
)

// Retry delays per failure kind.
const (
	quotaRetryDelay   = 24 * time.Hour
	unknownRetryDelay = 2 * time.Hour
)

// PublishRequest describes one asset to publish. ScheduledAt, when set, asks
// the platform to delay public visibility rather than posting immediately.
type PublishRequest struct {
	AssetID     string
	FilePath    string
	Title       string
	Description string
	Hashtags    []string
	Platform    string
	Channel     string
	Privacy     string
	ScheduledAt *time.Time
}

// Publisher sends a rendered clip to the outside world and returns the public
// post URL.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (string, error)
}

// PublishError is a classified failure from a publisher. Publishers that know
// why an upload failed should return one so the scheduler does not have to
// guess from message text.
type PublishError struct {
	Kind    string
	Message string
	Err     error
}

func (e *PublishError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind
}

func (e *PublishError) Unwrap() error { return e.Err }

// Classify determines the failure kind and the next retry time for an upload
// error. A structured PublishError wins, then the shared failure sentinels,
// then a scan of the message text for known signatures. A nil retry time
// means the failure is terminal.
func Classify(err error, now time.Time) (kind string, nextRetry *time.Time) {
	kind = KindUnknown
	var publishErr *PublishError
	switch {
	case errors.As(err, &publishErr) && publishErr.Kind != "":
		kind = publishErr.Kind
	case errors.Is(err, services.ErrQuotaExceeded):
		kind = KindQuota
	case services.Terminal(err):
		kind = KindAuth
		if errors.Is(err, services.ErrDuplicatePublish) {
			kind = KindDuplicate
		}
	default:
		message := strings.ToLower(err.Error())
		switch {
		case strings.Contains(message, "quota") || strings.Contains(message, "daily limit"):
			kind = KindQuota
		case strings.Contains(message, "auth") || strings.Contains(message, "unauthorized") || strings.Contains(message, "invalid"):
			kind = KindAuth
		case strings.Contains(message, "duplicate"):
			kind = KindDuplicate
		}
	}

	switch kind {
	case KindQuota:
		at := now.Add(quotaRetryDelay)
		return kind, &at
	case KindAuth, KindDuplicate:
		return kind, nil
	default:
		at := now.Add(unknownRetryDelay)
		return KindUnknown, &at
	}
}
