// Shop proxy handler.
//
// The embedded admin frontend never calls the Shopify Admin API directly;
// it asks this backend, which holds the access token. GET /shop queries the
// Admin GraphQL API at request time and returns a small shop summary.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetShop godoc
// @ID          getShop
// @Summary     Fetch shop info
// @Description Proxies a shop summary from the Shopify Admin GraphQL API for the session's shop.
// @Tags        Shop
// @Produce     json
//
// @Param       Authorization  header  string  false "Bearer session token"
//
// @Success     200  {object} shopify.ShopInfo
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     502  {object} handlers.ErrorResponse "Admin API error"
// @Failure     503  {object} handlers.ErrorResponse "Proxy not configured"
// @Router      /shop [get]
func (h *Handlers) GetShop(c *gin.Context) {
	if h.admin == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeShopQueryFailed, "shop proxy is not configured")
		return
	}

	info, err := h.admin.Shop(c.Request.Context(), shopDomain(c))
	if err != nil {
		// Upstream detail stays in logs, not in the client response.
		_ = c.Error(err)
		fail(c, http.StatusBadGateway, ErrCodeShopQueryFailed, "shop query failed")
		return
	}
	ok(c, http.StatusOK, info)
}
