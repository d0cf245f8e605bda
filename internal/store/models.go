package store

import (
	"strings"
	"time"
)

// ProductStatus represents the coarse product lifecycle.
type ProductStatus string

const (
	ProductReadyToDownload  ProductStatus = "READY_TO_DOWNLOAD"
	ProductPriorityDownload ProductStatus = "PRIORITY_DOWNLOAD"
	ProductDownloaded       ProductStatus = "DOWNLOADED"
	ProductProcessed        ProductStatus = "PROCESSED"
	ProductUploaded         ProductStatus = "UPLOADED"
	ProductError            ProductStatus = "ERROR"
)

// AssetStatus represents the finer-grained video asset lifecycle.
type AssetStatus string

const (
	AssetCollecting AssetStatus = "COLLECTING"
	AssetCollected  AssetStatus = "COLLECTED"
	AssetEditing    AssetStatus = "EDITING"
	AssetReady      AssetStatus = "READY"
	AssetProcessed  AssetStatus = "PROCESSED"
	AssetUploaded   AssetStatus = "UPLOADED"
	AssetCompleted  AssetStatus = "COMPLETED"
	AssetError      AssetStatus = "ERROR"
)

// UploadResult represents the outcome recorded on an upload log row.
type UploadResult string

const (
	UploadPending UploadResult = "PENDING"
	UploadSuccess UploadResult = "SUCCESS"
	UploadFailed  UploadResult = "FAILED"
)

// Track governs scheduling priority for a product.
type Track string

const (
	TrackAuto   Track = "AUTO"
	TrackManual Track = "MANUAL"
)

var productStatuses = []ProductStatus{
	ProductReadyToDownload,
	ProductPriorityDownload,
	ProductDownloaded,
	ProductProcessed,
	ProductUploaded,
	ProductError,
}

var assetStatuses = []AssetStatus{
	AssetCollecting,
	AssetCollected,
	AssetEditing,
	AssetReady,
	AssetProcessed,
	AssetUploaded,
	AssetCompleted,
	AssetError,
}

// ProductStatuses returns the ordered list of known product statuses.
func ProductStatuses() []ProductStatus {
	cp := make([]ProductStatus, len(productStatuses))
	copy(cp, productStatuses)
	return cp
}

// AssetStatuses returns the ordered list of known asset statuses.
func AssetStatuses() []AssetStatus {
	cp := make([]AssetStatus, len(assetStatuses))
	copy(cp, assetStatuses)
	return cp
}

// ParseProductStatus converts a string into a known ProductStatus.
func ParseProductStatus(value string) (ProductStatus, bool) {
	normalized := ProductStatus(strings.ToUpper(strings.TrimSpace(value)))
	for _, status := range productStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Product is a collected marketable item awaiting video sourcing.
type Product struct {
	ID            string
	Title         string
	Category      string
	OriginURL     string
	OriginSite    string
	AffiliateURL  string
	Status        ProductStatus
	Track         Track
	CollectedDate string
	PriceInfo     string
	Tags          []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AffiliateLink is one affiliate URL attached to a product.
type AffiliateLink struct {
	ID           string
	ProductID    string
	AffiliateURL string
	Network      string
	CampaignCode string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Channel is a publishing destination with quota and presentation rules.
type Channel struct {
	ID               string
	Name             string
	Platform         string
	UploadMode       string
	DailyUploadLimit int
	SubtitleStyle    string
	Tone             string
	HashtagTemplate  string
	TitlePrefix      string
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// VideoAsset is a media artifact derived from a product, tracked through the
// render and upload stages. One active asset exists per product.
type VideoAsset struct {
	ID              string
	ProductID       string
	ChannelID       string
	SourceURL       string
	RawPath         string
	ProcessedPath   string
	Status          AssetStatus
	ErrorMessage    string
	Hashtags        []string
	Language        string
	DurationSeconds float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UploadLog is one immutable publish attempt for a video asset. A new attempt
// is always a new row; rows are never updated after insertion.
type UploadLog struct {
	ID           string
	VideoAssetID string
	Platform     string
	Result       UploadResult
	IsPublished  bool
	PostURL      string
	ErrorKind    string
	ErrorMessage string
	ScheduledAt  *time.Time
	PublishedAt  *time.Time
	NextRetryAt  *time.Time
	CreatedAt    time.Time
}

// SetFailed marks the asset as errored with the given message.
func (a *VideoAsset) SetFailed(message string) {
	a.Status = AssetError
	a.ErrorMessage = message
}

// PipelineStats aggregates per-status counts for operator status output.
type PipelineStats struct {
	Products map[ProductStatus]int
	Assets   map[AssetStatus]int
	Uploads  map[UploadResult]int
}
