// Package repo implements the data persistence layer for rule records,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (weak ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/merchline/shopify-rules-backend/internal/domain"
)

// RuleStats returns aggregate metadata for a shop's rules: the total number
// of rows and the maximum UpdatedAt timestamp among those rows.
//
// It executes two lightweight queries against the rules table scoped to the
// provided shopDomain. When the shop has no rules, the returned count is 0
// and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total rules for shopDomain
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func RuleStats(ctx context.Context, db *gorm.DB, shopDomain string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Rule{}).Where("shop_domain = ?", shopDomain)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
