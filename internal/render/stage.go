package render

import (
	"context"
	"fmt"
	"path/filepath"
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

// Stage renders collected assets for their channels. Each pass drains assets
// in COLLECTED, assigns a channel when none is set, runs the encoder, and
// advances the asset to PROCESSED. Failures mark both the asset and its
// product as errored without stopping the pass.
type Stage struct {
	cfg      *config.Config
	store    *store.Store
	encoder  Encoder
	notifier notifications.Service
	logger   *slog.Logger
}

// NewStage wires the render stage.
func NewStage(cfg *config.Config, st *store.Store, encoder Encoder, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	if encoder == nil {
		encoder = PassthroughEncoder{}
	}
	return &Stage{
		cfg:     cfg,
		store:   st,
		encoder: encoder,
		logger:  logging.WithComponent(logger, "render-stage"),
	}
}

// WithNotifier enables push notifications for completed renders.
func (s *Stage) WithNotifier(notifier notifications.Service) {
	s.notifier = notifier
}

func (s *Stage) Name() string { return "render" }

// RunPass renders everything currently collected, plus errored assets that
// never produced an artifact. Re-running the pass is the retry mechanism: the
// stage itself never loops on a failure.
func (s *Stage) RunPass(ctx context.Context) error {
	assets, err := s.store.AssetsByStatus(ctx, store.AssetCollected, store.AssetReady, store.AssetError)
	if err != nil {
		return fmt.Errorf("load render queue: %w", err)
	}
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if asset.Status == store.AssetError && asset.ProcessedPath != "" {
			// Errored after rendering; the upload scheduler owns those.
			continue
		}
		if err := s.processAsset(ctx, asset); err != nil {
			s.logger.Error("render failed",
				logging.String(logging.FieldAssetID, asset.ID),
				logging.Error(err))
			s.markFailed(ctx, asset, err)
		}
	}
	return nil
}

func (s *Stage) processAsset(ctx context.Context, asset *store.VideoAsset) error {
	if asset.RawPath == "" {
		return services.Wrap(services.ErrValidation, "render", "process",
			"Asset has no raw file to render", nil)
	}
	if !fileutil.NonEmptyFile(asset.RawPath) {
		return services.Wrap(services.ErrValidation, "render", "process",
			fmt.Sprintf("Raw file %s is missing or empty", asset.RawPath), nil)
	}

	product, err := s.store.GetProductByID(ctx, asset.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return services.Wrap(services.ErrNotFound, "render", "process",
			"Asset references an unknown product", nil)
	}

	channel, err := s.resolveChannel(ctx, asset)
	if err != nil {
		return err
	}

	asset.Status = store.AssetEditing
	asset.ChannelID = channel.ID
	if err := s.store.UpdateAsset(ctx, asset); err != nil {
		return err
	}

	presentation := BuildPresentation(channel, product)
	outputPath := filepath.Join(s.cfg.Paths.ProcessedDir, filepath.Base(asset.RawPath))

	encodeCtx := ctx
	if seconds := s.cfg.Render.EncodeTimeout; seconds > 0 {
		var cancel context.CancelFunc
		encodeCtx, cancel = context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
		defer cancel()
	}
	result, err := s.encoder.Encode(encodeCtx, EncodeRequest{
		InputPath:    asset.RawPath,
		OutputPath:   outputPath,
		Presentation: presentation,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "encode",
			"Encoder failed", err)
	}
	if result.OutputPath == "" {
		return services.Wrap(services.ErrValidation, "render", "encode",
			"Encoder returned no output path", nil)
	}
	if !fileutil.NonEmptyFile(result.OutputPath) {
		return services.Wrap(services.ErrValidation, "render", "encode",
			fmt.Sprintf("Encoder output %s is missing or empty", result.OutputPath), nil)
	}

	asset.ProcessedPath = result.OutputPath
	asset.Status = store.AssetProcessed
	asset.ErrorMessage = ""
	asset.Hashtags = presentation.Hashtags
	if result.DurationSeconds > 0 {
		asset.DurationSeconds = result.DurationSeconds
	}
	if err := s.store.UpdateAsset(ctx, asset); err != nil {
		return err
	}
	if err := s.store.UpdateProductStatus(ctx, product.ID, store.ProductProcessed); err != nil {
		return err
	}
	s.logger.Info("asset rendered",
		logging.String(logging.FieldAssetID, asset.ID),
		logging.String(logging.FieldChannel, channel.Name),
		logging.String("path", result.OutputPath))
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, notifications.EventRenderCompleted, notifications.Payload{
			"title":   product.Title,
			"channel": channel.Name,
		}); err != nil {
			s.logger.Warn("notification failed", logging.Error(err))
		}
	}
	return nil
}

// resolveChannel keeps an existing assignment and otherwise falls back to the
// configured default channel.
func (s *Stage) resolveChannel(ctx context.Context, asset *store.VideoAsset) (*store.Channel, error) {
	if asset.ChannelID != "" {
		channel, err := s.store.ChannelByID(ctx, asset.ChannelID)
		if err != nil {
			return nil, err
		}
		if channel != nil {
			return channel, nil
		}
	}
	name := s.cfg.Render.DefaultChannel
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "render", "assign channel",
			"Asset has no channel and no default channel is configured", nil)
	}
	channel, err := s.store.ChannelByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, services.Wrap(services.ErrValidation, "render", "assign channel",
			fmt.Sprintf("Default channel %q does not exist", name), nil)
	}
	return channel, nil
}

func (s *Stage) markFailed(ctx context.Context, asset *store.VideoAsset, cause error) {
	asset.SetFailed(services.Message(cause))
	if err := s.store.UpdateAsset(ctx, asset); err != nil {
		s.logger.Error("mark asset failed",
			logging.String(logging.FieldAssetID, asset.ID),
			logging.Error(err))
	}
	if err := s.store.UpdateProductStatus(ctx, asset.ProductID, store.ProductError); err != nil {
		s.logger.Error("mark product failed",
			logging.String(logging.FieldProductID, asset.ProductID),
			logging.Error(err))
	}
}

// HealthCheck verifies the database and the processed directory.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.store.Health(ctx); err != nil {
		return stage.Unhealthy(s.Name(), err.Error())
	}
	if s.cfg.Paths.ProcessedDir == "" {
		return stage.Unhealthy(s.Name(), "processed directory not configured")
	}
	return stage.Healthy(s.Name())
}
