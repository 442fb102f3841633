// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements VerifySession, the tenant-resolution middleware for
// the embedded admin API. Every /api request must resolve to exactly one
// shop domain before any handler runs; handlers and repositories never see
// a request without one.
//
// Two modes:
//   - Verified mode (secret configured): the request must carry a Shopify
//     App Bridge session token as "Authorization: Bearer <jwt>". The token
//     is verified (HS256, exp required) and the shop domain is taken from
//     its dest claim. Anything else is a 401.
//   - Dev mode (empty secret): the shop domain is read from the
//     X-Shop-Domain header, falling back to a fixed demo shop. Intended for
//     local development only.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/merchline/shopify-rules-backend/internal/shopify"
)

const (
	// shopDomainKey is the Gin context key holding the resolved shop domain.
	shopDomainKey = "shopDomain"
	// shopDomainHeader carries the shop domain in dev mode.
	shopDomainHeader = "X-Shop-Domain"
	// devFallbackShop is used in dev mode when no header is sent.
	devFallbackShop = "demo-shop.myshopify.com"
)

// VerifySession returns a middleware that resolves the tenant shop domain
// for each request and stores it under the "shopDomain" context key.
//
// When apiSecret is non-empty, requests without a valid Bearer session
// token are rejected with 401 and a JSON error body; the shop domain is
// never taken from request data the client controls. When apiSecret is
// empty the middleware trusts X-Shop-Domain (dev mode).
func VerifySession(apiSecret string) gin.HandlerFunc {
	devMode := apiSecret == ""
	return func(c *gin.Context) {
		if devMode {
			shop := strings.TrimSpace(c.GetHeader(shopDomainHeader))
			if shop == "" {
				shop = devFallbackShop
			}
			c.Set(shopDomainKey, shop)
			c.Next()
			return
		}

		tok := shopify.BearerToken(c.GetHeader("Authorization"))
		if tok == "" {
			unauthorized(c, "missing session token")
			return
		}
		shop, err := shopify.ParseSessionToken(tok, apiSecret)
		if err != nil {
			unauthorized(c, "invalid session token")
			return
		}
		c.Set(shopDomainKey, shop)
		c.Next()
	}
}

// ShopFromCtx returns the shop domain resolved by VerifySession, or ""
// when the middleware did not run (e.g. unauthenticated routes).
func ShopFromCtx(c *gin.Context) string {
	if v, ok := c.Get(shopDomainKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// unauthorized aborts with the standard JSON error envelope. The message is
// deliberately generic; token parse details stay out of responses.
func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
