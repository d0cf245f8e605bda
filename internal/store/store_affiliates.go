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

const affiliateColumns = "id, product_id, affiliate_url, network, campaign_code, is_active, created_at, updated_at"

// UpsertAffiliateLink attaches an affiliate URL to a product. The URL is the
// natural key: re-registering an existing URL updates its network and campaign
// metadata instead of inserting a duplicate.
func (s *Store) UpsertAffiliateLink(ctx context.Context, link AffiliateLink) (*AffiliateLink, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(link.AffiliateURL) == "" {
		return nil, errors.New("affiliate URL is required")
	}
	if link.ProductID == "" {
		return nil, errors.New("product id is required")
	}
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO affiliate_links (
            id, product_id, affiliate_url, network, campaign_code, is_active,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(affiliate_url) DO UPDATE SET
            network = excluded.network,
            campaign_code = excluded.campaign_code,
            is_active = excluded.is_active,
            updated_at = excluded.updated_at`,
		link.ID,
		link.ProductID,
		link.AffiliateURL,
		nullableString(link.Network),
		nullableString(link.CampaignCode),
		boolToInt(link.Active),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert affiliate link: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+affiliateColumns+` FROM affiliate_links WHERE affiliate_url = ?`, link.AffiliateURL)
	stored, err := scanAffiliateLink(row)
	if err != nil {
		return nil, fmt.Errorf("get affiliate link: %w", err)
	}
	return stored, nil
}

// AffiliateLinksForProduct lists a product's affiliate links, oldest first.
func (s *Store) AffiliateLinksForProduct(ctx context.Context, productID string) ([]*AffiliateLink, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+affiliateColumns+` FROM affiliate_links WHERE product_id = ? ORDER BY created_at`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("query affiliate links: %w", err)
	}
	defer rows.Close()

	var links []*AffiliateLink
	for rows.Next() {
		link, err := scanAffiliateLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func scanAffiliateLink(scanner interface{ Scan(dest ...any) error }) (*AffiliateLink, error) {
	var (
		id           string
		productID    string
		affiliateURL string
		network      sql.NullString
		campaignCode sql.NullString
		active       int
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&productID,
		&affiliateURL,
		&network,
		&campaignCode,
		&active,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	link := &AffiliateLink{
		ID:           id,
		ProductID:    productID,
		AffiliateURL: affiliateURL,
		Network:      network.String,
		CampaignCode: campaignCode.String,
		Active:       active != 0,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		link.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		link.UpdatedAt = updated
	}
	return link, nil
}
