package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const uploadColumns = "id, video_asset_id, platform, result, is_published, post_url, error_kind, error_message, scheduled_at, published_at, next_retry_at, created_at"

// AppendUploadLog records one publish attempt. Logs are append-only: outcomes
// of later attempts are new rows, never updates. A zero CreatedAt is filled
// with the current time.
func (s *Store) AppendUploadLog(ctx context.Context, log UploadLog) (*UploadLog, error) {
	ctx = ensureContext(ctx)
	if log.VideoAssetID == "" {
		return nil, errors.New("video asset id is required")
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Result == "" {
		log.Result = UploadPending
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO upload_logs (
            id, video_asset_id, platform, result, is_published, post_url,
            error_kind, error_message, scheduled_at, published_at,
            next_retry_at, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.VideoAssetID,
		log.Platform,
		log.Result,
		boolToInt(log.IsPublished),
		nullableString(log.PostURL),
		nullableString(log.ErrorKind),
		nullableString(log.ErrorMessage),
		nullableTime(log.ScheduledAt),
		nullableTime(log.PublishedAt),
		nullableTime(log.NextRetryAt),
		log.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert upload log: %w", err)
	}
	return &log, nil
}

// LatestUploadLog returns the most recent attempt for an asset, or nil when
// none has been made.
func (s *Store) LatestUploadLog(ctx context.Context, assetID string) (*UploadLog, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+uploadColumns+` FROM upload_logs
         WHERE video_asset_id = ?
         ORDER BY created_at DESC LIMIT 1`,
		assetID,
	)
	log, err := scanUploadLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest upload log: %w", err)
	}
	return log, nil
}

// UploadLogsForAsset returns all attempts for an asset, oldest first.
func (s *Store) UploadLogsForAsset(ctx context.Context, assetID string) ([]*UploadLog, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+uploadColumns+` FROM upload_logs WHERE video_asset_id = ? ORDER BY created_at`,
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("query upload logs: %w", err)
	}
	defer rows.Close()

	var logs []*UploadLog
	for rows.Next() {
		log, err := scanUploadLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// RecentSuccessCount counts successful publishes for a channel since the given
// instant. This drives the sliding daily quota window: only SUCCESS rows
// count, joined through the asset's channel assignment.
func (s *Store) RecentSuccessCount(ctx context.Context, channelID string, since time.Time) (int, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT COUNT(*)
         FROM upload_logs ul
         JOIN video_assets va ON va.id = ul.video_asset_id
         WHERE va.channel_id = ? AND ul.result = ? AND ul.created_at >= ?`,
		channelID,
		UploadSuccess,
		since.UTC().Format(time.RFC3339Nano),
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent successes: %w", err)
	}
	return count, nil
}

// ClearRetryState marks an asset's failed attempts as retryable by appending a
// PENDING log wiping the error kind. Used by operator-driven retry: the
// scheduler treats the latest log as authoritative.
func (s *Store) ClearRetryState(ctx context.Context, assetID, platform string) (*UploadLog, error) {
	return s.AppendUploadLog(ctx, UploadLog{
		VideoAssetID: assetID,
		Platform:     platform,
		Result:       UploadPending,
	})
}

func scanUploadLog(scanner interface{ Scan(dest ...any) error }) (*UploadLog, error) {
	var (
		id          string
		assetID     string
		platform    string
		result      string
		isPublished int
		postURL     sql.NullString
		errorKind   sql.NullString
		errorMsg    sql.NullString
		scheduledAt sql.NullString
		publishedAt sql.NullString
		nextRetryAt sql.NullString
		createdRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&assetID,
		&platform,
		&result,
		&isPublished,
		&postURL,
		&errorKind,
		&errorMsg,
		&scheduledAt,
		&publishedAt,
		&nextRetryAt,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	log := &UploadLog{
		ID:           id,
		VideoAssetID: assetID,
		Platform:     platform,
		Result:       UploadResult(result),
		IsPublished:  isPublished != 0,
		PostURL:      postURL.String,
		ErrorKind:    errorKind.String,
		ErrorMessage: errorMsg.String,
		ScheduledAt:  parseTimePointer(scheduledAt.String),
		PublishedAt:  parseTimePointer(publishedAt.String),
		NextRetryAt:  parseTimePointer(nextRetryAt.String),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		log.CreatedAt = created
	}
	return log, nil
}
