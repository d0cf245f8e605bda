package downloader

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"clipcart/internal/config"
	"clipcart/internal/deps"
	"clipcart/internal/logging"
	"clipcart/internal/notifications"
	"clipcart/internal/resolver"
	"clipcart/internal/services"
	"clipcart/internal/stage"
	"clipcart/internal/store"
)

// Stage drains the download queue: it resolves candidate URLs for each
// waiting product, acquires a validated raw file, and records the resulting
// video asset. Priority products are served before regular ones, and failures
// are isolated per product.
type Stage struct {
	cfg        *config.Config
	store      *store.Store
	downloader *Downloader
	resolver   *resolver.Resolver
	fetcher    resolver.PageFetcher
	notifier   notifications.Service
	logger     *slog.Logger
}

// NewStage wires the acquisition stage.
func NewStage(cfg *config.Config, st *store.Store, dl *Downloader, res *resolver.Resolver, fetcher resolver.PageFetcher, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		cfg:        cfg,
		store:      st,
		downloader: dl,
		resolver:   res,
		fetcher:    fetcher,
		logger:     logging.WithComponent(logger, "download-stage"),
	}
}

// WithNotifier enables push notifications for completed acquisitions.
func (s *Stage) WithNotifier(notifier notifications.Service) {
	s.notifier = notifier
}

func (s *Stage) Name() string { return "download" }

// RunPass processes everything currently waiting to be downloaded.
func (s *Stage) RunPass(ctx context.Context) error {
	products, err := s.store.DownloadQueue(ctx, "", 0)
	if err != nil {
		return fmt.Errorf("load download queue: %w", err)
	}
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processProduct(ctx, product); err != nil {
			s.logger.Error("product acquisition failed",
				logging.String(logging.FieldProductID, product.ID),
				logging.String("title", product.Title),
				logging.Error(err))
			s.markFailed(ctx, product)
		}
	}
	return nil
}

func (s *Stage) processProduct(ctx context.Context, product *store.Product) error {
	rawPath, sourceURL, err := s.acquire(ctx, product)
	if err != nil {
		return err
	}

	asset, err := s.store.UpsertVideoAsset(ctx, store.VideoAsset{
		ProductID: product.ID,
		SourceURL: sourceURL,
	})
	if err != nil {
		return err
	}
	asset.RawPath = rawPath
	asset.Status = store.AssetCollected
	asset.ErrorMessage = ""
	if err := s.store.UpdateAsset(ctx, asset); err != nil {
		return err
	}
	if err := s.store.UpdateProductStatus(ctx, product.ID, store.ProductDownloaded); err != nil {
		return err
	}
	s.logger.Info("product downloaded",
		logging.String(logging.FieldProductID, product.ID),
		logging.String(logging.FieldAssetID, asset.ID),
		logging.String("path", rawPath))
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, notifications.EventDownloadCompleted, notifications.Payload{
			"title": product.Title,
		}); err != nil {
			s.logger.Warn("notification failed", logging.Error(err))
		}
	}
	return nil
}

// acquire picks the acquisition route: test source, resolved candidates, or
// the fallback pool.
func (s *Stage) acquire(ctx context.Context, product *store.Product) (string, string, error) {
	if s.cfg.Downloader.TestSource != "" {
		return s.downloader.CopyTestSource(product)
	}

	candidates, err := s.resolveCandidates(ctx, product)
	if err != nil {
		s.logger.Warn("resolution failed, using fallback pool",
			logging.String(logging.FieldProductID, product.ID),
			logging.Error(err))
	}
	if len(candidates) > 0 {
		rawPath, sourceURL, fetchErr := s.downloader.Fetch(ctx, product, candidates)
		if fetchErr == nil {
			return rawPath, sourceURL, nil
		}
		s.logger.Warn("all candidates failed, using fallback pool",
			logging.String(logging.FieldProductID, product.ID),
			logging.Error(fetchErr))
	}
	return s.downloader.FallbackCopy(ctx, product)
}

func (s *Stage) resolveCandidates(ctx context.Context, product *store.Product) ([]string, error) {
	if s.resolver == nil {
		return nil, nil
	}
	searchSeconds := s.cfg.Resolver.SearchTimeout
	if searchSeconds <= 0 {
		searchSeconds = 60
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(searchSeconds)*time.Second)
	defer cancel()

	page := &resolver.PageSnapshot{URL: product.OriginURL}
	if s.fetcher != nil {
		snapshot, err := s.fetcher.Fetch(ctx, product.OriginURL)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "download", "fetch page",
				"Product page capture failed", err)
		}
		page = snapshot
	}
	return s.resolver.Resolve(ctx, page, product)
}

func (s *Stage) markFailed(ctx context.Context, product *store.Product) {
	if err := s.store.UpdateProductStatus(ctx, product.ID, store.ProductError); err != nil {
		s.logger.Error("mark product failed",
			logging.String(logging.FieldProductID, product.ID),
			logging.Error(err))
	}
}

// HealthCheck verifies the database and the external media binaries.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.store.Health(ctx); err != nil {
		return stage.Unhealthy(s.Name(), err.Error())
	}
	statuses := deps.CheckBinaries(deps.Defaults(s.cfg.FFmpegBinary(), s.cfg.FFprobeBinary()))
	if missing := deps.FirstMissing(statuses); missing != nil {
		return stage.Unhealthy(s.Name(), missing.Detail)
	}
	return stage.Healthy(s.Name())
}
