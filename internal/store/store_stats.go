package store

import (
	"context"
	"fmt"
)

// Stats aggregates per-status counts across the pipeline for operator output.
func (s *Store) Stats(ctx context.Context) (*PipelineStats, error) {
	ctx = ensureContext(ctx)
	stats := &PipelineStats{
		Products: make(map[ProductStatus]int),
		Assets:   make(map[AssetStatus]int),
		Uploads:  make(map[UploadResult]int),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM products GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.Products[ProductStatus(status)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM video_assets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count assets: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.Assets[AssetStatus(status)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT result, COUNT(*) FROM upload_logs GROUP BY result`)
	if err != nil {
		return nil, fmt.Errorf("count upload logs: %w", err)
	}
	for rows.Next() {
		var result string
		var count int
		if err := rows.Scan(&result, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.Uploads[UploadResult(result)] = count
	}
	rows.Close()
	return stats, rows.Err()
}

// Health verifies the database responds to a trivial query.
func (s *Store) Health(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return nil
}
