package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionTestSecret = "shpss_mw_secret"

func sessionRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(VerifySession(secret))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, ShopFromCtx(c))
	})
	return r
}

func sessionJWT(t *testing.T, secret, shop string) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":  "https://" + shop + "/admin",
		"dest": "https://" + shop,
		"aud":  "api-key",
		"exp":  now.Add(time.Minute).Unix(),
		"nbf":  now.Add(-time.Minute).Unix(),
		"iat":  now.Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestVerifySession_ValidToken(t *testing.T) {
	r := sessionRouter(sessionTestSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sessionJWT(t, sessionTestSecret, "shop-a.myshopify.com"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "shop-a.myshopify.com" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestVerifySession_MissingAndInvalidTokens(t *testing.T) {
	r := sessionRouter(sessionTestSecret)

	cases := []struct {
		name string
		auth string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcg=="},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + sessionJWT(t, "other-secret", "shop-a.myshopify.com")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body["code"] != "unauthorized" {
				t.Fatalf("unexpected body: %v", body)
			}
		})
	}
}

func TestVerifySession_IgnoresShopHeaderWhenVerified(t *testing.T) {
	r := sessionRouter(sessionTestSecret)

	// A forged X-Shop-Domain header must not override the token's shop.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sessionJWT(t, sessionTestSecret, "shop-a.myshopify.com"))
	req.Header.Set(shopDomainHeader, "attacker.myshopify.com")
	r.ServeHTTP(w, req)

	if w.Body.String() != "shop-a.myshopify.com" {
		t.Fatalf("shop = %q", w.Body.String())
	}
}

func TestVerifySession_DevMode(t *testing.T) {
	r := sessionRouter("") // empty secret enables dev mode

	// Header wins when present.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(shopDomainHeader, "dev-shop.myshopify.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "dev-shop.myshopify.com" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}

	// No header falls back to the demo shop.
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w2, req2)
	if w2.Body.String() != devFallbackShop {
		t.Fatalf("fallback shop = %q", w2.Body.String())
	}
}

func TestShopFromCtx_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := ShopFromCtx(c); got != "" {
		t.Fatalf("expected empty shop, got %q", got)
	}
	c.Set(shopDomainKey, 42) // wrong type reads as empty
	if got := ShopFromCtx(c); got != "" {
		t.Fatalf("expected empty shop for non-string value, got %q", got)
	}
}
