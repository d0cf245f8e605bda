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

const productColumns = "id, title, category, origin_url, origin_site, affiliate_url, status, track, collected_date, price_info, tags_json, created_at, updated_at"

// CollectProduct inserts a product unless one already exists for the origin
// URL. Re-collection of a known URL is a no-op returning the existing row; the
// bool result reports whether a new row was created.
func (s *Store) CollectProduct(ctx context.Context, product Product) (*Product, bool, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(product.OriginURL) == "" {
		return nil, false, errors.New("origin URL is required")
	}

	existing, err := s.GetProductByOriginURL(ctx, product.OriginURL)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.Status == "" {
		product.Status = ProductReadyToDownload
	}
	if product.Track == "" {
		product.Track = TrackAuto
	}
	if product.CollectedDate == "" {
		product.CollectedDate = now.Format("20060102")
	}
	if strings.TrimSpace(product.Title) == "" {
		product.Title = product.OriginURL
	}

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO products (
            id, title, category, origin_url, origin_site, affiliate_url,
            status, track, collected_date, price_info, tags_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Title,
		nullableString(product.Category),
		product.OriginURL,
		nullableString(product.OriginSite),
		nullableString(product.AffiliateURL),
		product.Status,
		product.Track,
		product.CollectedDate,
		nullableString(product.PriceInfo),
		encodeStrings(product.Tags),
		timestamp,
		timestamp,
	)
	if err != nil {
		// A concurrent collector may have inserted the same origin URL.
		if strings.Contains(err.Error(), "UNIQUE") {
			existing, lookupErr := s.GetProductByOriginURL(ctx, product.OriginURL)
			if lookupErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("insert product: %w", err)
	}

	created, err := s.GetProductByID(ctx, product.ID)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// GetProductByID fetches a product by identifier.
func (s *Store) GetProductByID(ctx context.Context, id string) (*Product, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetProductByOriginURL fetches a product by its unique origin URL.
func (s *Store) GetProductByOriginURL(ctx context.Context, originURL string) (*Product, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+productColumns+` FROM products WHERE origin_url = ?`, originURL)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product by origin url: %w", err)
	}
	return product, nil
}

// UpdateProduct persists changes to an existing product.
func (s *Store) UpdateProduct(ctx context.Context, product *Product) error {
	if product == nil {
		return errors.New("product is nil")
	}
	product.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE products
         SET title = ?, category = ?, origin_site = ?, affiliate_url = ?,
             status = ?, track = ?, collected_date = ?, price_info = ?,
             tags_json = ?, updated_at = ?
         WHERE id = ?`,
		product.Title,
		nullableString(product.Category),
		nullableString(product.OriginSite),
		nullableString(product.AffiliateURL),
		product.Status,
		product.Track,
		product.CollectedDate,
		nullableString(product.PriceInfo),
		encodeStrings(product.Tags),
		product.UpdatedAt.Format(time.RFC3339Nano),
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateProductStatus transitions a product's lifecycle status.
func (s *Store) UpdateProductStatus(ctx context.Context, id string, status ProductStatus) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE products SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	return nil
}

// ProductsByStatus returns products matching any of the provided statuses,
// ordered by creation time ascending.
func (s *Store) ProductsByStatus(ctx context.Context, statuses ...ProductStatus) ([]*Product, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE status IN (` + placeholders + `) ORDER BY created_at`
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products by status: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// DownloadQueue returns products awaiting acquisition: priority items first,
// then regular ready items, each group ordered oldest first. When track is
// non-empty only products on that track are returned. A limit of 0 means no cap.
func (s *Store) DownloadQueue(ctx context.Context, track Track, limit int) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
        WHERE status IN (?, ?)`
	args := []any{ProductPriorityDownload, ProductReadyToDownload}
	if track != "" {
		query += ` AND track = ?`
		args = append(args, track)
	}
	query += ` ORDER BY CASE status WHEN ? THEN 0 ELSE 1 END, created_at`
	args = append(args, ProductPriorityDownload)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query download queue: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// BulkUpdateAffiliateURLs sets the affiliate URL on products keyed by origin
// URL and returns the number of rows changed.
func (s *Store) BulkUpdateAffiliateURLs(ctx context.Context, mapping map[string]string) (int64, error) {
	var updated int64
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for originURL, affiliateURL := range mapping {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE products SET affiliate_url = ?, updated_at = ? WHERE origin_url = ?`,
			affiliateURL,
			timestamp,
			originURL,
		)
		if err != nil {
			return updated, fmt.Errorf("update affiliate url: %w", err)
		}
		count, err := res.RowsAffected()
		if err != nil {
			return updated, err
		}
		updated += count
	}
	return updated, nil
}

func scanProduct(scanner interface{ Scan(dest ...any) error }) (*Product, error) {
	var (
		id            string
		title         string
		category      sql.NullString
		originURL     string
		originSite    sql.NullString
		affiliateURL  sql.NullString
		status        string
		track         string
		collectedDate sql.NullString
		priceInfo     sql.NullString
		tagsJSON      sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&category,
		&originURL,
		&originSite,
		&affiliateURL,
		&status,
		&track,
		&collectedDate,
		&priceInfo,
		&tagsJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	product := &Product{
		ID:            id,
		Title:         title,
		Category:      category.String,
		OriginURL:     originURL,
		OriginSite:    originSite.String,
		AffiliateURL:  affiliateURL.String,
		Status:        ProductStatus(status),
		Track:         Track(track),
		CollectedDate: collectedDate.String,
		PriceInfo:     priceInfo.String,
		Tags:          decodeStrings(tagsJSON.String),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		product.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		product.UpdatedAt = updated
	}
	return product, nil
}
