package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/merchline/shopify-rules-backend/internal/services"
	"github.com/merchline/shopify-rules-backend/internal/shopify"
)

func shopRouter(admin *shopify.AdminClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(nil, services.IdentityFormatter{}, admin)
	r := gin.New()
	r.GET("/api/shop", h.GetShop)
	return r
}

func TestGetShop_ProxiesAdminAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": {
				"shop": {
					"name": "Shop A",
					"myshopifyDomain": "shop-a.myshopify.com",
					"url": "https://shop-a.myshopify.com",
					"plan": {"displayName": "Basic"}
				}
			}
		}`))
	}))
	defer srv.Close()

	admin := shopify.NewAdminClient("shpat_token", "")
	admin.BaseURL = srv.URL

	r := shopRouter(admin)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/shop", nil)
	req.Header.Set("X-Shop-Domain", "shop-a.myshopify.com")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var info shopify.ShopInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Name != "Shop A" || info.PlanDisplayName != "Basic" {
		t.Fatalf("unexpected shop info: %+v", info)
	}
}

func TestGetShop_Unconfigured503(t *testing.T) {
	r := shopRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/shop", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != ErrCodeShopQueryFailed {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetShop_UpstreamFailure502(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	admin := shopify.NewAdminClient("shpat_token", "")
	admin.BaseURL = srv.URL

	r := shopRouter(admin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/shop", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	// Upstream error text must not leak into the response body.
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Message != "shop query failed" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
