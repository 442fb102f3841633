// Package services – response formatting seam.
//
// Stored rules are mapped to their external representation through a
// RuleFormatter before they leave the API. In the base rule flow the
// mapping is the identity, but the seam exists so a collaborator (for
// example enrichment from the Shopify Admin catalog API) can be layered in
// without changing the router or the handlers.
package services

import (
	"context"

	"github.com/merchline/shopify-rules-backend/internal/domain"
)

// RuleFormatter maps stored rules to the payloads returned by the API.
// Implementations must not mutate the input slice.
type RuleFormatter interface {
	Format(ctx context.Context, shopDomain string, rules []domain.Rule) ([]domain.Rule, error)
}

// IdentityFormatter returns rules exactly as stored. It is the formatter
// used by the base rule flow.
type IdentityFormatter struct{}

// Format implements RuleFormatter.
func (IdentityFormatter) Format(_ context.Context, _ string, rules []domain.Rule) ([]domain.Rule, error) {
	if rules == nil {
		return []domain.Rule{}, nil
	}
	return rules, nil
}
