package uploader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipcart/internal/config"
	"clipcart/internal/notifications"
	"clipcart/internal/services"
	"clipcart/internal/store"
	"clipcart/internal/testsupport"
	"clipcart/internal/uploader"
)

type stubPublisher struct {
	calls   []uploader.PublishRequest
	err     error
	postURL string
}

func (p *stubPublisher) Publish(_ context.Context, req uploader.PublishRequest) (string, error) {
	p.calls = append(p.calls, req)
	if p.err != nil {
		return "", p.err
	}
	if p.postURL != "" {
		return p.postURL, nil
	}
	return "https://platform.example/post/" + req.AssetID, nil
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		err       error
		wantKind  string
		wantRetry *time.Time
	}{
		{
			name:      "structured quota",
			err:       &uploader.PublishError{Kind: uploader.KindQuota, Message: "limit hit"},
			wantKind:  uploader.KindQuota,
			wantRetry: timePtr(now.Add(24 * time.Hour)),
		},
		{
			name:     "structured auth",
			err:      &uploader.PublishError{Kind: uploader.KindAuth, Message: "token expired"},
			wantKind: uploader.KindAuth,
		},
		{
			name:     "structured duplicate",
			err:      &uploader.PublishError{Kind: uploader.KindDuplicate, Message: "already posted"},
			wantKind: uploader.KindDuplicate,
		},
		{
			name:      "quota sentinel",
			err:       services.Wrap(services.ErrQuotaExceeded, "upload", "publish", "window full", nil),
			wantKind:  uploader.KindQuota,
			wantRetry: timePtr(now.Add(24 * time.Hour)),
		},
		{
			name:     "auth sentinel",
			err:      services.Wrap(services.ErrAuthFailure, "upload", "publish", "token revoked", nil),
			wantKind: uploader.KindAuth,
		},
		{
			name:     "duplicate sentinel",
			err:      services.Wrap(services.ErrDuplicatePublish, "upload", "publish", "already posted", nil),
			wantKind: uploader.KindDuplicate,
		},
		{
			name:      "message quota",
			err:       errors.New("uploadLimitExceeded: quota reached"),
			wantKind:  uploader.KindQuota,
			wantRetry: timePtr(now.Add(24 * time.Hour)),
		},
		{
			name:      "message daily limit",
			err:       errors.New("the daily limit has been reached"),
			wantKind:  uploader.KindQuota,
			wantRetry: timePtr(now.Add(24 * time.Hour)),
		},
		{
			name:     "message unauthorized",
			err:      errors.New("401 unauthorized"),
			wantKind: uploader.KindAuth,
		},
		{
			name:     "message invalid credentials",
			err:      errors.New("invalid_grant"),
			wantKind: uploader.KindAuth,
		},
		{
			name:     "message duplicate",
			err:      errors.New("duplicate video detected"),
			wantKind: uploader.KindDuplicate,
		},
		{
			name:      "unknown",
			err:       errors.New("connection reset by peer"),
			wantKind:  uploader.KindUnknown,
			wantRetry: timePtr(now.Add(2 * time.Hour)),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind, retry := uploader.Classify(tc.err, now)
			if kind != tc.wantKind {
				t.Fatalf("kind: got %q want %q", kind, tc.wantKind)
			}
			if (retry == nil) != (tc.wantRetry == nil) {
				t.Fatalf("retry presence: got %v want %v", retry, tc.wantRetry)
			}
			if retry != nil && !retry.Equal(*tc.wantRetry) {
				t.Fatalf("retry: got %v want %v", retry, tc.wantRetry)
			}
		})
	}
}

func timePtr(at time.Time) *time.Time { return &at }

type fixture struct {
	cfg     *config.Config
	store   *store.Store
	channel *store.Channel
}

func newFixture(t *testing.T, dailyLimit int) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	channel := testsupport.NewChannel(t, st, "main", dailyLimit)
	return &fixture{cfg: cfg, store: st, channel: channel}
}

// seedProcessedAsset creates a processed asset with a real artifact on disk.
func (f *fixture) seedProcessedAsset(t *testing.T, originURL, sourceURL string) *store.VideoAsset {
	t.Helper()
	ctx := context.Background()
	product, _, err := f.store.CollectProduct(ctx, store.Product{
		Title:     "Item " + sourceURL,
		OriginURL: originURL,
	})
	if err != nil {
		t.Fatalf("CollectProduct: %v", err)
	}
	asset, err := f.store.UpsertVideoAsset(ctx, store.VideoAsset{
		ProductID: product.ID,
		ChannelID: f.channel.ID,
		SourceURL: sourceURL,
	})
	if err != nil {
		t.Fatalf("UpsertVideoAsset: %v", err)
	}
	asset.Status = store.AssetProcessed
	asset.ProcessedPath = f.cfg.Paths.ProcessedDir + "/" + asset.ID + ".mp4"
	if err := f.store.UpdateAsset(ctx, asset); err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	testsupport.WriteFile(t, asset.ProcessedPath, 64)
	return asset
}

func TestRunPassPublishesProcessedAsset(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	asset := f.seedProcessedAsset(t, "https://shop.example/1", "https://cdn.example/1.mp4")

	publisher := &stubPublisher{}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	if len(publisher.calls) != 1 {
		t.Fatalf("expected one publish, got %d", len(publisher.calls))
	}
	uploaded, err := f.store.GetAssetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if uploaded.Status != store.AssetUploaded {
		t.Fatalf("unexpected asset status %s", uploaded.Status)
	}
	product, err := f.store.GetProductByID(ctx, uploaded.ProductID)
	if err != nil {
		t.Fatalf("GetProductByID: %v", err)
	}
	if product.Status != store.ProductUploaded {
		t.Fatalf("unexpected product status %s", product.Status)
	}
	latest, err := f.store.LatestUploadLog(ctx, asset.ID)
	if err != nil {
		t.Fatalf("LatestUploadLog: %v", err)
	}
	if latest.Result != store.UploadSuccess || !latest.IsPublished {
		t.Fatalf("unexpected log %+v", latest)
	}
	if latest.PostURL == "" {
		t.Fatal("expected recorded post URL")
	}
}

type recordingNotifier struct {
	events []notifications.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	n.events = append(n.events, event)
	return nil
}

func TestRunPassEmitsUploadAndQuotaEvents(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.seedProcessedAsset(t, "https://shop.example/n1", "https://cdn.example/n1.mp4")
	f.seedProcessedAsset(t, "https://shop.example/n2", "https://cdn.example/n2.mp4")

	notifier := &recordingNotifier{}
	s := uploader.NewScheduler(f.cfg, f.store, &stubPublisher{}, nil)
	s.WithNotifier(notifier)

	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventUploadCompleted {
		t.Fatalf("first pass events: %v", notifier.events)
	}

	// A second pass sees the window already full and reports the quota.
	notifier.events = nil
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("second RunPass: %v", err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventQuotaExhausted {
		t.Fatalf("second pass events: %v", notifier.events)
	}
}

func TestRunPassStopsAtDailyQuota(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	now := time.Now().UTC()

	// Two successes in the trailing window exhaust the quota.
	for i, sourceURL := range []string{"https://cdn.example/a.mp4", "https://cdn.example/b.mp4"} {
		asset := f.seedProcessedAsset(t, "https://shop.example/used-"+sourceURL, sourceURL)
		if _, err := f.store.AppendUploadLog(ctx, store.UploadLog{
			VideoAssetID: asset.ID,
			Platform:     f.channel.Platform,
			Result:       store.UploadSuccess,
			IsPublished:  true,
			CreatedAt:    now.Add(-time.Duration(i+1) * time.Hour),
		}); err != nil {
			t.Fatalf("AppendUploadLog: %v", err)
		}
		asset.Status = store.AssetUploaded
		if err := f.store.UpdateAsset(ctx, asset); err != nil {
			t.Fatalf("UpdateAsset: %v", err)
		}
	}
	f.seedProcessedAsset(t, "https://shop.example/waiting", "https://cdn.example/waiting.mp4")

	publisher := &stubPublisher{}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if len(publisher.calls) != 0 {
		t.Fatalf("expected quota to block publishing, got %d calls", len(publisher.calls))
	}
}

func TestRunPassQuotaWindowSlides(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	now := time.Now().UTC()

	// Old successes outside the 24h window no longer count.
	for _, sourceURL := range []string{"https://cdn.example/old-a.mp4", "https://cdn.example/old-b.mp4"} {
		asset := f.seedProcessedAsset(t, "https://shop.example/old-"+sourceURL, sourceURL)
		if _, err := f.store.AppendUploadLog(ctx, store.UploadLog{
			VideoAssetID: asset.ID,
			Platform:     f.channel.Platform,
			Result:       store.UploadSuccess,
			IsPublished:  true,
			CreatedAt:    now.Add(-25 * time.Hour),
		}); err != nil {
			t.Fatalf("AppendUploadLog: %v", err)
		}
		asset.Status = store.AssetUploaded
		if err := f.store.UpdateAsset(ctx, asset); err != nil {
			t.Fatalf("UpdateAsset: %v", err)
		}
	}
	f.seedProcessedAsset(t, "https://shop.example/fresh", "https://cdn.example/fresh.mp4")

	publisher := &stubPublisher{}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if len(publisher.calls) != 1 {
		t.Fatalf("expected window to slide open, got %d calls", len(publisher.calls))
	}
}

func TestRunPassServesBacklogOldestFirstWithinQuota(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	first := f.seedProcessedAsset(t, "https://shop.example/1", "https://cdn.example/1.mp4")
	time.Sleep(2 * time.Millisecond)
	second := f.seedProcessedAsset(t, "https://shop.example/2", "https://cdn.example/2.mp4")
	time.Sleep(2 * time.Millisecond)
	third := f.seedProcessedAsset(t, "https://shop.example/3", "https://cdn.example/3.mp4")

	publisher := &stubPublisher{}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	if len(publisher.calls) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(publisher.calls))
	}
	if publisher.calls[0].AssetID != first.ID || publisher.calls[1].AssetID != second.ID {
		t.Fatal("expected oldest-first service order")
	}
	waiting, err := f.store.GetAssetByID(ctx, third.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if waiting.Status != store.AssetProcessed {
		t.Fatalf("third asset should still be waiting, got %s", waiting.Status)
	}
}

func TestRunPassFailedAttemptConsumesSelectionSlot(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	first := f.seedProcessedAsset(t, "https://shop.example/1", "https://cdn.example/1.mp4")
	time.Sleep(2 * time.Millisecond)
	second := f.seedProcessedAsset(t, "https://shop.example/2", "https://cdn.example/2.mp4")

	publisher := &stubPublisher{err: errors.New("connection reset by peer")}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	// Only one slot remained, so only the oldest asset may be attempted
	// even though the attempt failed.
	if len(publisher.calls) != 1 {
		t.Fatalf("expected 1 publish attempt, got %d", len(publisher.calls))
	}
	if publisher.calls[0].AssetID != first.ID {
		t.Fatal("expected the oldest asset to spend the slot")
	}
	log, err := f.store.LatestUploadLog(ctx, second.ID)
	if err != nil {
		t.Fatalf("LatestUploadLog: %v", err)
	}
	if log != nil {
		t.Fatalf("newer asset should not have been attempted, found %s log", log.Result)
	}
}

func TestRunPassSkipsChannelsWithoutQuota(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	asset := f.seedProcessedAsset(t, "https://shop.example/1", "https://cdn.example/1.mp4")

	publisher := &stubPublisher{}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	if len(publisher.calls) != 0 {
		t.Fatalf("zero-limit channel must not publish, got %d calls", len(publisher.calls))
	}
	waiting, err := f.store.GetAssetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if waiting.Status != store.AssetProcessed {
		t.Fatalf("asset should remain queued, got %s", waiting.Status)
	}
}

func TestRunPassIgnoresAssetsWithoutArtifactPath(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	asset := f.seedProcessedAsset(t, "https://shop.example/1", "https://cdn.example/1.mp4")
	asset.Status = store.AssetError
	asset.ProcessedPath = ""
	asset.ErrorMessage = "render failed"
	if err := f.store.UpdateAsset(ctx, asset); err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}

	publisher := &stubPublisher{}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	if len(publisher.calls) != 0 {
		t.Fatalf("never-rendered asset must not be attempted, got %d calls", len(publisher.calls))
	}
	log, err := f.store.LatestUploadLog(ctx, asset.ID)
	if err != nil {
		t.Fatalf("LatestUploadLog: %v", err)
	}
	if log != nil {
		t.Fatal("no upload log expected for an asset without an artifact")
	}
}

func TestRunPassDefersUnknownFailureUntilRetryTime(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	asset := f.seedProcessedAsset(t, "https://shop.example/1", "https://cdn.example/1.mp4")

	base := time.Now().UTC()
	current := base
	publisher := &stubPublisher{err: errors.New("connection reset by peer")}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	s.WithClock(func() time.Time { return current })

	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if len(publisher.calls) != 1 {
		t.Fatalf("expected one attempt, got %d", len(publisher.calls))
	}

	failed, err := f.store.GetAssetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if failed.Status != store.AssetError {
		t.Fatalf("unexpected asset status %s", failed.Status)
	}
	latest, err := f.store.LatestUploadLog(ctx, asset.ID)
	if err != nil {
		t.Fatalf("LatestUploadLog: %v", err)
	}
	if latest.Result != store.UploadFailed || latest.ErrorKind != uploader.KindUnknown {
		t.Fatalf("unexpected log %+v", latest)
	}
	if latest.NextRetryAt == nil {
		t.Fatal("unknown failures must get a retry time")
	}

	// Still inside the backoff: no new attempt.
	current = base.Add(time.Hour)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass (backoff): %v", err)
	}
	if len(publisher.calls) != 1 {
		t.Fatalf("expected backoff to hold, got %d attempts", len(publisher.calls))
	}

	// Past the backoff: retried.
	current = base.Add(3 * time.Hour)
	publisher.err = nil
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass (retry): %v", err)
	}
	if len(publisher.calls) != 2 {
		t.Fatalf("expected retry after backoff, got %d attempts", len(publisher.calls))
	}
	recovered, err := f.store.GetAssetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if recovered.Status != store.AssetUploaded {
		t.Fatalf("unexpected asset status %s", recovered.Status)
	}
}

func TestRunPassNeverRetriesTerminalFailures(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	asset := f.seedProcessedAsset(t, "https://shop.example/1", "https://cdn.example/1.mp4")

	base := time.Now().UTC()
	current := base
	publisher := &stubPublisher{err: &uploader.PublishError{Kind: uploader.KindAuth, Message: "token expired"}}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	s.WithClock(func() time.Time { return current })

	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if len(publisher.calls) != 1 {
		t.Fatalf("expected one attempt, got %d", len(publisher.calls))
	}
	latest, err := f.store.LatestUploadLog(ctx, asset.ID)
	if err != nil {
		t.Fatalf("LatestUploadLog: %v", err)
	}
	if latest.ErrorKind != uploader.KindAuth || latest.NextRetryAt != nil {
		t.Fatalf("unexpected log %+v", latest)
	}

	// Even days later the asset stays blocked.
	current = base.Add(72 * time.Hour)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass (later): %v", err)
	}
	if len(publisher.calls) != 1 {
		t.Fatalf("terminal failure must not be retried, got %d attempts", len(publisher.calls))
	}

	// Operator intervention reopens the asset.
	publisher.err = nil
	if err := s.Retry(ctx, asset.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass (after retry): %v", err)
	}
	if len(publisher.calls) != 2 {
		t.Fatalf("expected attempt after operator retry, got %d", len(publisher.calls))
	}
}

func TestRunPassRecordsFailureForMissingArtifact(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	product, _, err := f.store.CollectProduct(ctx, store.Product{
		Title:     "Ghost",
		OriginURL: "https://shop.example/ghost",
	})
	if err != nil {
		t.Fatalf("CollectProduct: %v", err)
	}
	asset, err := f.store.UpsertVideoAsset(ctx, store.VideoAsset{
		ProductID: product.ID,
		ChannelID: f.channel.ID,
		SourceURL: "https://cdn.example/ghost.mp4",
	})
	if err != nil {
		t.Fatalf("UpsertVideoAsset: %v", err)
	}
	asset.Status = store.AssetProcessed
	asset.ProcessedPath = f.cfg.Paths.ProcessedDir + "/missing.mp4"
	if err := f.store.UpdateAsset(ctx, asset); err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}

	publisher := &stubPublisher{}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if len(publisher.calls) != 0 {
		t.Fatal("publisher must not be called without an artifact")
	}
	latest, err := f.store.LatestUploadLog(ctx, asset.ID)
	if err != nil {
		t.Fatalf("LatestUploadLog: %v", err)
	}
	if latest == nil || latest.Result != store.UploadFailed {
		t.Fatalf("expected FAILED log, got %+v", latest)
	}
}

func TestRunPassSkipsInactiveChannels(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	f.seedProcessedAsset(t, "https://shop.example/1", "https://cdn.example/1.mp4")

	if err := f.store.SetChannelActive(ctx, f.channel.ID, false); err != nil {
		t.Fatalf("SetChannelActive: %v", err)
	}

	publisher := &stubPublisher{}
	s := uploader.NewScheduler(f.cfg, f.store, publisher, nil)
	if err := s.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if len(publisher.calls) != 0 {
		t.Fatal("inactive channels must not publish")
	}
}

func TestHTTPPublisherClassifiesStatuses(t *testing.T) {
	tests := []struct {
		status       int
		wantKind     string
		wantTerminal bool
	}{
		{http.StatusTooManyRequests, uploader.KindQuota, false},
		{http.StatusUnauthorized, uploader.KindAuth, true},
		{http.StatusForbidden, uploader.KindAuth, true},
		{http.StatusConflict, uploader.KindDuplicate, true},
		{http.StatusBadGateway, uploader.KindUnknown, false},
	}
	for _, tc := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))

		cfg := testsupport.NewConfig(t)
		cfg.Publisher.BaseURL = server.URL
		clip := cfg.Paths.ProcessedDir + "/clip.mp4"
		testsupport.WriteFile(t, clip, 16)

		publisher := uploader.NewHTTPPublisher(cfg)
		_, err := publisher.Publish(context.Background(), uploader.PublishRequest{
			AssetID:  "a1",
			FilePath: clip,
			Title:    "Clip",
		})
		server.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		var publishErr *uploader.PublishError
		if !errors.As(err, &publishErr) {
			t.Fatalf("status %d: expected PublishError, got %T", tc.status, err)
		}
		if publishErr.Kind != tc.wantKind {
			t.Fatalf("status %d: got kind %q want %q", tc.status, publishErr.Kind, tc.wantKind)
		}
		if services.Terminal(err) != tc.wantTerminal {
			t.Fatalf("status %d: terminal = %v, want %v", tc.status, services.Terminal(err), tc.wantTerminal)
		}
	}
}

func TestHTTPPublisherReturnsPostURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("title") != "Desk Lamp" {
			t.Errorf("unexpected title %q", r.FormValue("title"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"post_url":"https://platform.example/post/42"}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Publisher.BaseURL = server.URL
	clip := cfg.Paths.ProcessedDir + "/clip.mp4"
	testsupport.WriteFile(t, clip, 16)

	publisher := uploader.NewHTTPPublisher(cfg)
	postURL, err := publisher.Publish(context.Background(), uploader.PublishRequest{
		AssetID:  "a1",
		FilePath: clip,
		Title:    "Desk Lamp",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if postURL != "https://platform.example/post/42" {
		t.Fatalf("unexpected post URL %q", postURL)
	}
}
