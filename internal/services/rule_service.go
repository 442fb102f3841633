// Package services – RuleService
//
// This file implements the RuleService, which manages the lifecycle of
// notification rules. It normalizes titles, enforces tenant ownership, and
// coordinates repository operations for creating, listing, updating, and
// deleting rules. The tenant (shop domain) always comes from the verified
// session; nothing in a request body or path can change which shop a rule
// belongs to.
//
// Service-level errors (ErrRuleNotFound, ErrInvalidRule) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/merchline/shopify-rules-backend/internal/domain"
)

// RuleRepo defines the repository contract required by RuleService.
// Implementations are responsible for persistence of rule rows; they do
// not enforce ownership.
type RuleRepo interface {
	// CreateRule inserts a new rule row for the given shop.
	CreateRule(ctx context.Context, db *gorm.DB, shopDomain, title, trigger string) (*domain.Rule, error)

	// GetRule fetches a rule by id with no tenant filter.
	GetRule(ctx context.Context, db *gorm.DB, id uint) (*domain.Rule, error)

	// ListRules returns all rules belonging to the shop.
	ListRules(ctx context.Context, db *gorm.DB, shopDomain string) ([]domain.Rule, error)

	// UpdateRule overwrites title/trigger of the row with the given id.
	UpdateRule(ctx context.Context, db *gorm.DB, id uint, title, trigger string) error

	// DeleteRule removes the row with the given id if present.
	DeleteRule(ctx context.Context, db *gorm.DB, id uint) error
}

// RuleService provides rule-level operations scoped to a single shop.
// Every read or mutation by id goes through GetOwned first, so a rule
// belonging to another tenant is indistinguishable from a missing one.
type RuleService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the rule repository used by this service.
	Repo RuleRepo

	// TitleMaxLen caps stored titles by rune length.
	TitleMaxLen int
}

// NewRuleService constructs a RuleService with sane defaults for title handling.
func NewRuleService(db *gorm.DB, r RuleRepo) *RuleService {
	return &RuleService{
		DB:          db,
		Repo:        r,
		TitleMaxLen: 255,
	}
}

// Create inserts a new rule owned by shopDomain and returns the stored row
// read back from the database. Titles are normalized and clipped; a blank
// title or trigger yields ErrInvalidRule.
//
// The insert and the read-back are two separate calls, not a transaction;
// a concurrent delete in between surfaces as ErrRuleNotFound, which is an
// accepted race at this scale.
func (s *RuleService) Create(ctx context.Context, shopDomain, title, trigger string) (*domain.Rule, error) {
	title = normalizeTitle(title)
	trigger = strings.TrimSpace(trigger)
	if title == "" || trigger == "" {
		return nil, ErrInvalidRule
	}

	created, err := s.Repo.CreateRule(ctx, s.DB, shopDomain, s.clip(title), trigger)
	if err != nil {
		return nil, err
	}
	return s.readBack(ctx, created.ID)
}

// List returns all rules for the shop. A shop with no rules yields an
// empty slice, never an error.
func (s *RuleService) List(ctx context.Context, shopDomain string) ([]domain.Rule, error) {
	return s.Repo.ListRules(ctx, s.DB, shopDomain)
}

// GetOwned loads the rule with the given id and verifies it belongs to
// shopDomain. Both a missing id and a rule owned by another shop return
// ErrRuleNotFound, so existence never leaks across tenants. The helper is
// free of transport side effects; the handler owns the 404 write.
func (s *RuleService) GetOwned(ctx context.Context, shopDomain string, id uint) (*domain.Rule, error) {
	r, err := s.Repo.GetRule(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if r.ShopDomain != shopDomain {
		return nil, ErrRuleNotFound
	}
	return r, nil
}

// Update overwrites the title and trigger of a rule owned by shopDomain
// and returns the updated row. Ownership is checked before the write, so
// an update by the wrong tenant fails with ErrRuleNotFound without
// touching the row. Applying the same input twice yields the same stored
// state.
func (s *RuleService) Update(ctx context.Context, shopDomain string, id uint, title, trigger string) (*domain.Rule, error) {
	title = normalizeTitle(title)
	trigger = strings.TrimSpace(trigger)
	if title == "" || trigger == "" {
		return nil, ErrInvalidRule
	}

	if _, err := s.GetOwned(ctx, shopDomain, id); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateRule(ctx, s.DB, id, s.clip(title), trigger); err != nil {
		return nil, err
	}
	return s.readBack(ctx, id)
}

// Delete permanently removes a rule owned by shopDomain. Ownership is
// checked first; deleting a foreign or missing rule returns
// ErrRuleNotFound.
func (s *RuleService) Delete(ctx context.Context, shopDomain string, id uint) error {
	if _, err := s.GetOwned(ctx, shopDomain, id); err != nil {
		return err
	}
	return s.Repo.DeleteRule(ctx, s.DB, id)
}

// readBack re-reads a rule after a write so responses carry the
// store-assigned timestamps.
func (s *RuleService) readBack(ctx context.Context, id uint) (*domain.Rule, error) {
	r, err := s.Repo.GetRule(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return r, nil
}

// clip truncates a rule title to the configured maximum rune length.
func (s *RuleService) clip(title string) string {
	if s.TitleMaxLen > 0 && utf8.RuneCountInString(title) > s.TitleMaxLen {
		return string([]rune(title)[:s.TitleMaxLen])
	}
	return title
}

// normalizeTitle trims whitespace, collapses runs of spaces, and applies
// NFC so visually identical titles compare equal.
func normalizeTitle(s string) string {
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	return norm.NFC.String(s)
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
