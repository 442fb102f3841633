// Package shopify holds the collaborator interfaces of the rules backend:
// App Bridge session-token verification (the source of the tenant
// identity) and a minimal Admin GraphQL client.
//
// This file implements session-token parsing. Embedded apps receive a JWT
// in the Authorization header on every request; it is signed with the
// app's API secret (HS256) by Shopify, and its "dest" claim carries the
// canonical shop domain. The shop domain is derived exclusively from this
// token; request bodies and paths are never trusted for tenant identity.
package shopify

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Session-token parsing errors.
var (
	// ErrInvalidToken covers malformed, expired, or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrNoShopClaim is returned when a structurally valid token carries
	// no usable dest claim.
	ErrNoShopClaim = errors.New("session token has no shop claim")
)

// ParseSessionToken verifies an App Bridge session token against the app's
// API secret and returns the canonical shop domain (e.g.
// "shop-a.myshopify.com") from the dest claim.
//
// Validation performed:
//   - HS256 signature against secret
//   - exp/nbf (enforced by the jwt library; exp is required)
//   - presence and shape of the dest claim ("https://{shop}")
func ParseSessionToken(token, secret string) (string, error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoShopClaim
	}
	dest, _ := claims["dest"].(string)
	shop := strings.TrimPrefix(dest, "https://")
	shop = strings.TrimSuffix(shop, "/")
	if shop == "" || shop == dest {
		// Empty or not an https URL: refuse rather than guess.
		return "", ErrNoShopClaim
	}
	return shop, nil
}

// BearerToken extracts the token from an Authorization header value.
// Returns "" when the header is absent or not a Bearer scheme.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
