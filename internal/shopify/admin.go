// Package shopify – Admin GraphQL client.
//
// The rules backend proxies a small amount of data through the Shopify
// Admin GraphQL API so the embedded frontend never talks to Shopify
// directly (and never sees the access token). By querying at request time
// the proxied data cannot become stale. The base rule flow does not call
// out; only the /api/shop proxy endpoint exercises this client.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAPIVersion is the Admin API version used when none is configured.
const DefaultAPIVersion = "2024-01"

// shopQuery fetches the handful of shop fields the admin panel renders.
const shopQuery = `
  query shopInfo {
    shop {
      name
      myshopifyDomain
      url
      plan { displayName }
    }
  }
`

// ShopInfo is the proxied subset of the Admin API shop object.
type ShopInfo struct {
	Name            string `json:"name"`
	MyshopifyDomain string `json:"myshopifyDomain"`
	URL             string `json:"url"`
	PlanDisplayName string `json:"planDisplayName"`
}

// AdminClient issues GraphQL queries against a shop's Admin API endpoint.
// The zero value is not usable; construct with NewAdminClient.
type AdminClient struct {
	// AccessToken is the offline access token for the app installation.
	AccessToken string
	// APIVersion selects the Admin API version path segment.
	APIVersion string
	// HTTPClient is the transport used for requests.
	HTTPClient *http.Client

	// BaseURL overrides the per-shop endpoint when set (test seam).
	BaseURL string
}

// NewAdminClient returns a client for the given access token and API
// version. An empty version falls back to DefaultAPIVersion.
func NewAdminClient(accessToken, apiVersion string) *AdminClient {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &AdminClient{
		AccessToken: accessToken,
		APIVersion:  apiVersion,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Shop returns the shop object for shopDomain via the Admin API.
func (c *AdminClient) Shop(ctx context.Context, shopDomain string) (*ShopInfo, error) {
	var out struct {
		Shop struct {
			Name            string `json:"name"`
			MyshopifyDomain string `json:"myshopifyDomain"`
			URL             string `json:"url"`
			Plan            struct {
				DisplayName string `json:"displayName"`
			} `json:"plan"`
		} `json:"shop"`
	}
	if err := c.query(ctx, shopDomain, shopQuery, nil, &out); err != nil {
		return nil, err
	}
	return &ShopInfo{
		Name:            out.Shop.Name,
		MyshopifyDomain: out.Shop.MyshopifyDomain,
		URL:             out.Shop.URL,
		PlanDisplayName: out.Shop.Plan.DisplayName,
	}, nil
}

// graphQLError is a single error entry in a GraphQL response envelope.
type graphQLError struct {
	Message string `json:"message"`
}

// query posts a GraphQL document to the shop's Admin endpoint and decodes
// the data payload into out. GraphQL-level errors are surfaced as Go
// errors; partial data with errors is treated as failure.
func (c *AdminClient) query(ctx context.Context, shopDomain, doc string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"query":     doc,
		"variables": vars,
	})
	if err != nil {
		return err
	}

	endpoint := c.BaseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, c.APIVersion)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("admin api: unexpected status %d: %s", resp.StatusCode, b)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("admin api: %s", envelope.Errors[0].Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}
