package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const assetColumns = "id, product_id, channel_id, source_url, raw_path, processed_path, status, error_message, hashtags_json, language, duration_seconds, created_at, updated_at"

// UpsertVideoAsset creates an asset for a source URL or returns the existing
// one. The source URL is the natural key: re-resolving the same media for a
// product never produces a second asset row.
func (s *Store) UpsertVideoAsset(ctx context.Context, asset VideoAsset) (*VideoAsset, error) {
	ctx = ensureContext(ctx)
	if asset.SourceURL == "" {
		return nil, errors.New("source URL is required")
	}
	existing, err := s.GetAssetBySourceURL(ctx, asset.SourceURL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.Status == "" {
		asset.Status = AssetCollecting
	}
	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO video_assets (
            id, product_id, channel_id, source_url, raw_path, processed_path,
            status, error_message, hashtags_json, language, duration_seconds,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		asset.ID,
		asset.ProductID,
		nullableString(asset.ChannelID),
		asset.SourceURL,
		nullableString(asset.RawPath),
		nullableString(asset.ProcessedPath),
		asset.Status,
		nullableString(asset.ErrorMessage),
		encodeStrings(asset.Hashtags),
		nullableString(asset.Language),
		asset.DurationSeconds,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert video asset: %w", err)
	}
	return s.GetAssetByID(ctx, asset.ID)
}

// GetAssetByID fetches an asset by identifier.
func (s *Store) GetAssetByID(ctx context.Context, id string) (*VideoAsset, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+assetColumns+` FROM video_assets WHERE id = ?`, id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video asset: %w", err)
	}
	return asset, nil
}

// GetAssetBySourceURL fetches an asset by its unique source URL.
func (s *Store) GetAssetBySourceURL(ctx context.Context, sourceURL string) (*VideoAsset, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+assetColumns+` FROM video_assets WHERE source_url = ?`, sourceURL)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video asset by source url: %w", err)
	}
	return asset, nil
}

// AssetsForProduct returns all assets derived from a product, oldest first.
func (s *Store) AssetsForProduct(ctx context.Context, productID string) ([]*VideoAsset, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+assetColumns+` FROM video_assets WHERE product_id = ? ORDER BY created_at`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("query assets for product: %w", err)
	}
	defer rows.Close()
	return collectAssets(rows)
}

// AssetsByStatus returns assets matching any of the provided statuses, oldest
// first.
func (s *Store) AssetsByStatus(ctx context.Context, statuses ...AssetStatus) ([]*VideoAsset, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+assetColumns+` FROM video_assets WHERE status IN (`+placeholders+`) ORDER BY created_at`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query assets by status: %w", err)
	}
	defer rows.Close()
	return collectAssets(rows)
}

// UploadCandidatesForChannel returns assets eligible for upload selection on a
// channel: those in the given statuses that have a processed artifact, oldest
// first, capped at limit. A limit of 0 means no cap. Assets without a
// processed path are render-stage business and never upload candidates.
func (s *Store) UploadCandidatesForChannel(ctx context.Context, channelID string, statuses []AssetStatus, limit int) ([]*VideoAsset, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := []any{channelID}
	for _, status := range statuses {
		args = append(args, status)
	}
	query := `SELECT ` + assetColumns + ` FROM video_assets
        WHERE channel_id = ? AND status IN (` + placeholders + `)
          AND processed_path IS NOT NULL AND processed_path != ''
        ORDER BY created_at`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query upload candidates: %w", err)
	}
	defer rows.Close()
	return collectAssets(rows)
}

// UpdateAsset persists changes to an existing asset.
func (s *Store) UpdateAsset(ctx context.Context, asset *VideoAsset) error {
	if asset == nil {
		return errors.New("asset is nil")
	}
	asset.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE video_assets
         SET channel_id = ?, raw_path = ?, processed_path = ?, status = ?,
             error_message = ?, hashtags_json = ?, language = ?,
             duration_seconds = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(asset.ChannelID),
		nullableString(asset.RawPath),
		nullableString(asset.ProcessedPath),
		asset.Status,
		nullableString(asset.ErrorMessage),
		encodeStrings(asset.Hashtags),
		nullableString(asset.Language),
		asset.DurationSeconds,
		asset.UpdatedAt.Format(time.RFC3339Nano),
		asset.ID,
	)
	if err != nil {
		return fmt.Errorf("update video asset: %w", err)
	}
	return nil
}

func collectAssets(rows *sql.Rows) ([]*VideoAsset, error) {
	var assets []*VideoAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func scanAsset(scanner interface{ Scan(dest ...any) error }) (*VideoAsset, error) {
	var (
		id           string
		productID    string
		channelID    sql.NullString
		sourceURL    string
		rawPath      sql.NullString
		processed    sql.NullString
		status       string
		errMessage   sql.NullString
		hashtagsJSON sql.NullString
		language     sql.NullString
		duration     sql.NullFloat64
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&productID,
		&channelID,
		&sourceURL,
		&rawPath,
		&processed,
		&status,
		&errMessage,
		&hashtagsJSON,
		&language,
		&duration,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	asset := &VideoAsset{
		ID:              id,
		ProductID:       productID,
		ChannelID:       channelID.String,
		SourceURL:       sourceURL,
		RawPath:         rawPath.String,
		ProcessedPath:   processed.String,
		Status:          AssetStatus(status),
		ErrorMessage:    errMessage.String,
		Hashtags:        decodeStrings(hashtagsJSON.String),
		Language:        language.String,
		DurationSeconds: duration.Float64,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		asset.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		asset.UpdatedAt = updated
	}
	return asset, nil
}
