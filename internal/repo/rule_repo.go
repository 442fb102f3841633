// Package repo implements the data persistence layer for rule records,
// backed by GORM. This file provides repository functions for the Rule
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no tenant enforcement, only CRUD
// persistence and query composition. Ownership checks live in the service
// layer (see services.RuleService), which loads a rule by id and compares
// its shop domain against the session before allowing access.
//
// Error semantics:
//   - When a rule is not found, GetRule returns gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/merchline/shopify-rules-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRule inserts a new rule row owned by shopDomain. The id is assigned
// by SQLite (AUTOINCREMENT) and CreatedAt is set to UTC at insert time.
//
// On success, it returns the persisted Rule. On failure, it returns a DB error.
func CreateRule(ctx context.Context, db *gorm.DB, shopDomain, title, trigger string) (*domain.Rule, error) {
	r := &domain.Rule{
		ShopDomain: shopDomain,
		Title:      title,
		Trigger:    trigger,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRule fetches a single rule by its id, with no tenant filter. If the
// record does not exist, it returns ErrNotFound. The primary-key constraint
// guarantees at most one row per id, so a multi-row result (the corrupt
// store case) cannot surface here.
func GetRule(ctx context.Context, db *gorm.DB, id uint) (*domain.Rule, error) {
	var r domain.Rule
	if err := db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRules returns all rules belonging to shopDomain. The result is
// computed fresh per call; order is not part of the contract, but rows come
// back ordered by id for stable rendering. An empty slice is returned when
// the shop has no rules.
func ListRules(ctx context.Context, db *gorm.DB, shopDomain string) ([]domain.Rule, error) {
	out := []domain.Rule{}
	err := db.WithContext(ctx).
		Where("shop_domain = ?", shopDomain).
		Order("id").
		Find(&out).Error
	return out, err
}

// UpdateRule overwrites only the title and trigger of the rule with the
// given id. Zero rows matched is not an error at this layer; existence and
// ownership are enforced by the service above it. The shop domain and id
// columns are never touched.
func UpdateRule(ctx context.Context, db *gorm.DB, id uint, title, trigger string) error {
	return db.WithContext(ctx).
		Model(&domain.Rule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "trigger": trigger}).
		Error
}

// DeleteRule removes the rule with the given id if present. Deleting an
// absent id is a no-op, not an error. Deletion is permanent: the model has
// no soft-delete column.
func DeleteRule(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Delete(&domain.Rule{}, id).Error
}
