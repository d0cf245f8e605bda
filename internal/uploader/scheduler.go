package uploader

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"clipcart/internal/config"
	"clipcart/internal/fileutil"
	"clipcart/internal/logging"
	"clipcart/internal/notifications"
	"clipcart/internal/services"
	"clipcart/internal/stage"
	"clipcart/internal/store"
)

// slidingWindow is the quota accounting period.
const slidingWindow = 24 * time.Hour

// Scheduler drains upload backlogs for every active channel.
type Scheduler struct {
	cfg       *config.Config
	store     *store.Store
	publisher Publisher
	notifier  notifications.Service
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduler wires the upload scheduler.
func NewScheduler(cfg *config.Config, st *store.Store, publisher Publisher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		cfg:       cfg,
		store:     st,
		publisher: publisher,
		logger:    logging.WithComponent(logger, "upload-scheduler"),
		now:       time.Now,
	}
}

// WithNotifier enables push notifications for publishes and quota events.
func (s *Scheduler) WithNotifier(notifier notifications.Service) {
	s.notifier = notifier
}

// WithClock allows injecting a custom time source for tests.
func (s *Scheduler) WithClock(now func() time.Time) {
	if s != nil && now != nil {
		s.now = now
	}
}

func (s *Scheduler) Name() string { return "upload" }

// RunPass serves each active channel once. A channel failing wholesale does
// not stop the remaining channels.
func (s *Scheduler) RunPass(ctx context.Context) error {
	channels, err := s.store.Channels(ctx, true)
	if err != nil {
		return fmt.Errorf("load active channels: %w", err)
	}
	for _, channel := range channels {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.serveChannel(ctx, channel); err != nil {
			s.logger.Error("channel pass failed",
				logging.String(logging.FieldChannel, channel.Name),
				logging.Error(err))
		}
	}
	return nil
}

// serveChannel publishes the channel's oldest eligible assets. The remaining
// quota is computed once at the start of the pass over the trailing 24 hours
// of successes, and candidate selection is capped to it before the retry
// gate: a failed attempt still consumes its selection slot until the next
// pass.
func (s *Scheduler) serveChannel(ctx context.Context, channel *store.Channel) error {
	if channel.DailyUploadLimit <= 0 {
		s.logger.Debug("channel has no upload quota",
			logging.String(logging.FieldChannel, channel.Name))
		return nil
	}

	now := s.now().UTC()
	used, err := s.store.RecentSuccessCount(ctx, channel.ID, now.Add(-slidingWindow))
	if err != nil {
		return err
	}
	remaining := channel.DailyUploadLimit - used
	if remaining <= 0 {
		s.logger.Info("daily quota exhausted",
			logging.String(logging.FieldChannel, channel.Name),
			logging.Int("used", used),
			logging.Int("limit", channel.DailyUploadLimit))
		s.notify(ctx, notifications.EventQuotaExhausted, notifications.Payload{
			"channel": channel.Name,
		})
		return nil
	}

	candidates, err := s.store.UploadCandidatesForChannel(ctx, channel.ID,
		[]store.AssetStatus{store.AssetProcessed, store.AssetError}, remaining)
	if err != nil {
		return err
	}

	for _, asset := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		eligible, err := s.eligibleForAttempt(ctx, asset, now)
		if err != nil {
			return err
		}
		if !eligible {
			continue
		}
		if err := s.attempt(ctx, channel, asset, now); err != nil {
			return err
		}
	}
	return nil
}

// eligibleForAttempt applies the retry gate using the asset's latest log. A
// FAILED log with a terminal kind blocks the asset until an operator clears
// it; a FAILED log with a future retry time defers it.
func (s *Scheduler) eligibleForAttempt(ctx context.Context, asset *store.VideoAsset, now time.Time) (bool, error) {
	latest, err := s.store.LatestUploadLog(ctx, asset.ID)
	if err != nil {
		return false, err
	}
	if latest == nil || latest.Result != store.UploadFailed {
		return true, nil
	}
	if latest.ErrorKind == KindAuth || latest.ErrorKind == KindDuplicate {
		return false, nil
	}
	if latest.NextRetryAt != nil && now.Before(*latest.NextRetryAt) {
		return false, nil
	}
	return true, nil
}

// attempt publishes one asset and records the outcome.
func (s *Scheduler) attempt(ctx context.Context, channel *store.Channel, asset *store.VideoAsset, now time.Time) error {
	if asset.ProcessedPath == "" || !fileutil.NonEmptyFile(asset.ProcessedPath) {
		retryAt := now.Add(unknownRetryDelay)
		return s.recordFailure(ctx, channel, asset, now, KindUnknown,
			"processed file missing or empty", &retryAt)
	}

	product, err := s.store.GetProductByID(ctx, asset.ProductID)
	if err != nil {
		return err
	}
	title := asset.SourceURL
	description := ""
	if product != nil {
		title = product.Title
		description = title
		if url := product.AffiliateURL; url != "" {
			description += "\n\n" + url
		}
	}

	publishCtx := ctx
	if seconds := s.cfg.Publisher.UploadTimeout; seconds > 0 {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
		defer cancel()
	}
	postURL, err := s.publisher.Publish(publishCtx, PublishRequest{
		AssetID:     asset.ID,
		FilePath:    asset.ProcessedPath,
		Title:       title,
		Description: description,
		Hashtags:    asset.Hashtags,
		Platform:    channel.Platform,
		Channel:     channel.Name,
		Privacy:     s.cfg.Publisher.Privacy,
	})
	if err != nil {
		kind, nextRetry := Classify(err, now)
		s.logger.Warn("publish failed",
			logging.String(logging.FieldChannel, channel.Name),
			logging.String(logging.FieldAssetID, asset.ID),
			logging.String("kind", kind),
			logging.Error(err))
		return s.recordFailure(ctx, channel, asset, now, kind, services.Message(err), nextRetry)
	}

	publishedAt := now
	if _, err := s.store.AppendUploadLog(ctx, store.UploadLog{
		VideoAssetID: asset.ID,
		Platform:     channel.Platform,
		Result:       store.UploadSuccess,
		IsPublished:  true,
		PostURL:      postURL,
		PublishedAt:  &publishedAt,
		CreatedAt:    now,
	}); err != nil {
		return err
	}

	asset.Status = store.AssetUploaded
	asset.ErrorMessage = ""
	if err := s.store.UpdateAsset(ctx, asset); err != nil {
		return err
	}
	if product != nil {
		if err := s.store.UpdateProductStatus(ctx, product.ID, store.ProductUploaded); err != nil {
			return err
		}
	}
	s.logger.Info("asset published",
		logging.String(logging.FieldChannel, channel.Name),
		logging.String(logging.FieldAssetID, asset.ID),
		logging.String("post_url", postURL))
	s.notify(ctx, notifications.EventUploadCompleted, notifications.Payload{
		"title":    title,
		"channel":  channel.Name,
		"post_url": postURL,
	})
	return nil
}

func (s *Scheduler) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		s.logger.Warn("notification failed", logging.Error(err))
	}
}

func (s *Scheduler) recordFailure(ctx context.Context, channel *store.Channel, asset *store.VideoAsset, now time.Time, kind, message string, nextRetry *time.Time) error {
	if _, err := s.store.AppendUploadLog(ctx, store.UploadLog{
		VideoAssetID: asset.ID,
		Platform:     channel.Platform,
		Result:       store.UploadFailed,
		ErrorKind:    kind,
		ErrorMessage: message,
		NextRetryAt:  nextRetry,
		CreatedAt:    now,
	}); err != nil {
		return err
	}
	asset.SetFailed(message)
	return s.store.UpdateAsset(ctx, asset)
}

// Retry clears the terminal failure state of an asset so the next pass may
// attempt it again.
func (s *Scheduler) Retry(ctx context.Context, assetID string) error {
	asset, err := s.store.GetAssetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return services.Wrap(services.ErrNotFound, "upload", "retry",
			fmt.Sprintf("Asset %s not found", assetID), nil)
	}
	platform := ""
	if asset.ChannelID != "" {
		channel, err := s.store.ChannelByID(ctx, asset.ChannelID)
		if err != nil {
			return err
		}
		if channel != nil {
			platform = channel.Platform
		}
	}
	if _, err := s.store.ClearRetryState(ctx, asset.ID, platform); err != nil {
		return err
	}
	if asset.ProcessedPath != "" {
		asset.Status = store.AssetProcessed
		asset.ErrorMessage = ""
		return s.store.UpdateAsset(ctx, asset)
	}
	return nil
}

// HealthCheck verifies the database and the publisher configuration.
func (s *Scheduler) HealthCheck(ctx context.Context) stage.Health {
	if err := s.store.Health(ctx); err != nil {
		return stage.Unhealthy(s.Name(), err.Error())
	}
	if s.publisher == nil {
		return stage.Unhealthy(s.Name(), "no publisher configured")
	}
	return stage.Healthy(s.Name())
}
