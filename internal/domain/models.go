// Package domain defines the persistence model for notification rules.
// The types here are mapped with GORM and form the core data layer of the
// rules backend.
package domain

import "time"

// Trigger values the admin UI currently offers. The store treats the
// trigger column as an opaque string; this enumeration exists for the
// frontend and for tests, not as a database constraint.
const (
	TriggerOrderCreated   = "order/created"
	TriggerProductCreated = "product/created"
)

// Rule represents a trigger-based notification configuration owned by a
// single shop. Rules are created from the embedded admin panel and are the
// only entity this service persists.
//
// Fields:
//   - ID: integer primary key assigned by SQLite (monotonic, never reused).
//   - ShopDomain: owning tenant; set once at creation from the verified
//     session, never from client-supplied data, and immutable thereafter.
//   - Title: human-readable rule name.
//   - Trigger: the event the rule reacts to (e.g. "order/created").
//   - CreatedAt: insert timestamp, immutable.
//   - UpdatedAt: maintained by GORM on every write; feeds the weak ETag on
//     list responses.
type Rule struct {
	ID         uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	ShopDomain string    `json:"shopDomain" gorm:"type:varchar(511);not null;index:idx_shop_rules"`
	Title      string    `json:"title"      gorm:"type:varchar(511);not null"`
	Trigger    string    `json:"trigger"    gorm:"type:varchar(255);not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName returns the database table name for Rule.
func (Rule) TableName() string { return "rules" }
