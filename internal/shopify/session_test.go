package shopify

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "shpss_test_secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func validClaims(shop string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":  "https://" + shop + "/admin",
		"dest": "https://" + shop,
		"aud":  "api-key",
		"sub":  "42",
		"exp":  now.Add(time.Minute).Unix(),
		"nbf":  now.Add(-time.Minute).Unix(),
		"iat":  now.Unix(),
	}
}

func TestParseSessionToken_Valid(t *testing.T) {
	tok := signedToken(t, testSecret, validClaims("shop-a.myshopify.com"))
	shop, err := ParseSessionToken(tok, testSecret)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if shop != "shop-a.myshopify.com" {
		t.Fatalf("shop = %q", shop)
	}
}

func TestParseSessionToken_TrailingSlashInDest(t *testing.T) {
	claims := validClaims("shop-a.myshopify.com")
	claims["dest"] = "https://shop-a.myshopify.com/"
	tok := signedToken(t, testSecret, claims)
	shop, err := ParseSessionToken(tok, testSecret)
	if err != nil || shop != "shop-a.myshopify.com" {
		t.Fatalf("got (%q, %v)", shop, err)
	}
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	tok := signedToken(t, "other-secret", validClaims("shop-a.myshopify.com"))
	if _, err := ParseSessionToken(tok, testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseSessionToken_Expired(t *testing.T) {
	claims := validClaims("shop-a.myshopify.com")
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	tok := signedToken(t, testSecret, claims)
	if _, err := ParseSessionToken(tok, testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseSessionToken_MissingExpiry(t *testing.T) {
	claims := validClaims("shop-a.myshopify.com")
	delete(claims, "exp")
	tok := signedToken(t, testSecret, claims)
	if _, err := ParseSessionToken(tok, testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken when exp missing, got %v", err)
	}
}

func TestParseSessionToken_BadDest(t *testing.T) {
	for _, dest := range []interface{}{"", "http://insecure.example.com", 42, nil} {
		claims := validClaims("shop-a.myshopify.com")
		claims["dest"] = dest
		tok := signedToken(t, testSecret, claims)
		if _, err := ParseSessionToken(tok, testSecret); !errors.Is(err, ErrNoShopClaim) {
			t.Fatalf("dest=%v: expected ErrNoShopClaim, got %v", dest, err)
		}
	}
}

func TestParseSessionToken_Garbage(t *testing.T) {
	if _, err := ParseSessionToken("not.a.jwt", testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", "abc"}, // scheme match is case-insensitive
		{"Basic dXNlcg==", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, c := range cases {
		if got := BearerToken(c.in); got != c.want {
			t.Fatalf("BearerToken(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
