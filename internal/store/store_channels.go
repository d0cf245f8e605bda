package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const channelColumns = "id, name, platform, upload_mode, daily_upload_limit, subtitle_style, tone, hashtag_template, title_prefix, active, created_at, updated_at"

// CreateChannel inserts a publishing channel. Channel names are unique.
func (s *Store) CreateChannel(ctx context.Context, channel Channel) (*Channel, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(channel.Name) == "" {
		return nil, errors.New("channel name is required")
	}
	if strings.TrimSpace(channel.Platform) == "" {
		return nil, errors.New("channel platform is required")
	}
	if channel.ID == "" {
		channel.ID = uuid.NewString()
	}
	if channel.UploadMode == "" {
		channel.UploadMode = "AUTO"
	}
	if channel.SubtitleStyle == "" {
		channel.SubtitleStyle = "BOTH"
	}
	if channel.Tone == "" {
		channel.Tone = "INFORMAL"
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO channels (
            id, name, platform, upload_mode, daily_upload_limit,
            subtitle_style, tone, hashtag_template, title_prefix, active,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		channel.ID,
		channel.Name,
		channel.Platform,
		channel.UploadMode,
		channel.DailyUploadLimit,
		channel.SubtitleStyle,
		channel.Tone,
		nullableString(channel.HashtagTemplate),
		nullableString(channel.TitlePrefix),
		boolToInt(channel.Active),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert channel: %w", err)
	}
	return s.ChannelByID(ctx, channel.ID)
}

// ChannelByID fetches a channel by identifier.
func (s *Store) ChannelByID(ctx context.Context, id string) (*Channel, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+channelColumns+` FROM channels WHERE id = ?`, id)
	channel, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return channel, nil
}

// ChannelByName fetches a channel by its unique name.
func (s *Store) ChannelByName(ctx context.Context, name string) (*Channel, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+channelColumns+` FROM channels WHERE name = ?`, name)
	channel, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get channel by name: %w", err)
	}
	return channel, nil
}

// Channels lists channels ordered by name. With activeOnly set, inactive
// channels are skipped.
func (s *Store) Channels(ctx context.Context, activeOnly bool) ([]*Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ensureContext(ctx), query)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var channels []*Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

// SetChannelActive toggles a channel in or out of scheduler consideration.
func (s *Store) SetChannelActive(ctx context.Context, id string, active bool) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE channels SET active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set channel active: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("channel %s not found", id)
	}
	return nil
}

// UpdateChannel persists changes to an existing channel.
func (s *Store) UpdateChannel(ctx context.Context, channel *Channel) error {
	if channel == nil {
		return errors.New("channel is nil")
	}
	channel.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE channels
         SET platform = ?, upload_mode = ?, daily_upload_limit = ?,
             subtitle_style = ?, tone = ?, hashtag_template = ?,
             title_prefix = ?, active = ?, updated_at = ?
         WHERE id = ?`,
		channel.Platform,
		channel.UploadMode,
		channel.DailyUploadLimit,
		channel.SubtitleStyle,
		channel.Tone,
		nullableString(channel.HashtagTemplate),
		nullableString(channel.TitlePrefix),
		boolToInt(channel.Active),
		channel.UpdatedAt.Format(time.RFC3339Nano),
		channel.ID,
	)
	if err != nil {
		return fmt.Errorf("update channel: %w", err)
	}
	return nil
}

func scanChannel(scanner interface{ Scan(dest ...any) error }) (*Channel, error) {
	var (
		id            string
		name          string
		platform      string
		uploadMode    string
		dailyLimit    int
		subtitleStyle string
		tone          string
		hashtags      sql.NullString
		titlePrefix   sql.NullString
		active        int
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&name,
		&platform,
		&uploadMode,
		&dailyLimit,
		&subtitleStyle,
		&tone,
		&hashtags,
		&titlePrefix,
		&active,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	channel := &Channel{
		ID:               id,
		Name:             name,
		Platform:         platform,
		UploadMode:       uploadMode,
		DailyUploadLimit: dailyLimit,
		SubtitleStyle:    subtitleStyle,
		Tone:             tone,
		HashtagTemplate:  hashtags.String,
		TitlePrefix:      titlePrefix.String,
		Active:           active != 0,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		channel.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		channel.UpdatedAt = updated
	}
	return channel, nil
}
