package metadatasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenRefreshMargin re-authenticates a little ahead of the claimed
// expiry, rather than racing a request against it.
const tokenRefreshMargin = 5 * time.Minute

// HTTPClient is the concrete Client implementation: HTTPS JSON over a
// bearer token obtained from POST /login and lazily refreshed on 401,
// per spec §6. Grounded on the teacher's internal/fetch's plain
// net/http.Client usage (no resty/http-client library appears anywhere in
// the pack), with the credential/refresh loop modeled on the cron-driven
// background-job pattern suprachakra's services use for periodic
// token rotation.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	pin        string
	httpClient *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewHTTPClient(baseURL, apiKey, pin string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		pin:        pin,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type loginRequest struct {
	APIKey string `json:"apikey"`
	Pin    string `json:"pin,omitempty"`
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// login calls POST /login and caches the returned bearer token, deriving
// its expiry from the JWT's exp claim when present, falling back to the
// spec's documented 30-day assumption otherwise.
func (c *HTTPClient) login(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{APIKey: c.apiKey, Pin: c.pin})
	if err != nil {
		return &AuthError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Err: fmt.Errorf("login returned status %d", resp.StatusCode)}
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return &AuthError{Err: err}
	}
	if lr.Data.Token == "" {
		return &AuthError{Err: fmt.Errorf("login response carried no token")}
	}

	c.mu.Lock()
	c.token = lr.Data.Token
	c.expiresAt = tokenExpiry(lr.Data.Token)
	c.mu.Unlock()
	return nil
}

// tokenExpiry reads the exp claim out of the JWT without verifying its
// signature (the catalog, not this client, is the token's issuer); falls
// back to the spec's documented 30-day validity assumption if the claim is
// absent or unparseable.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Now().Add(30 * 24 * time.Hour)
}

func (c *HTTPClient) validToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	expiresAt := c.expiresAt
	c.mu.Unlock()

	if token == "" || time.Now().Add(tokenRefreshMargin).After(expiresAt) {
		if err := c.login(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.token
		c.mu.Unlock()
	}
	return token, nil
}

// doJSON issues an authenticated GET, retrying exactly once after a fresh
// login if the first attempt comes back 401, per spec §6's lazy-refresh
// contract.
func (c *HTTPClient) doJSON(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.validToken(ctx)
		if err != nil {
			return nil, err
		}

		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && attempt == 0:
			resp.Body.Close()
			c.mu.Lock()
			c.token = ""
			c.mu.Unlock()
			continue
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			return nil, &RateLimited{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("catalog request %s returned status %d: %s", path, resp.StatusCode, body)
		default:
			return resp.Body, nil
		}
	}
	return nil, fmt.Errorf("catalog request %s failed authentication twice", path)
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := time.ParseDuration(v + "s"); err == nil {
		return secs
	}
	return 0
}

func decodeRawList(body io.ReadCloser) ([]Raw, error) {
	defer body.Close()
	var out []Raw
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRaw(body io.ReadCloser) (Raw, error) {
	defer body.Close()
	var out Raw
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Search(ctx context.Context, query string) ([]Raw, error) {
	body, err := c.doJSON(ctx, "/search", url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}
	return decodeRawList(body)
}

func (c *HTTPClient) Series(ctx context.Context, id string, extended bool) (Raw, error) {
	path := "/series/" + id
	if extended {
		path += "/extended"
	}
	body, err := c.doJSON(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeRaw(body)
}

func (c *HTTPClient) Movie(ctx context.Context, id string) (Raw, error) {
	body, err := c.doJSON(ctx, "/movies/"+id, nil)
	if err != nil {
		return nil, err
	}
	return decodeRaw(body)
}

func (c *HTTPClient) Episodes(ctx context.Context, seriesID string) ([]Raw, error) {
	body, err := c.doJSON(ctx, "/series/"+seriesID+"/episodes", nil)
	if err != nil {
		return nil, err
	}
	return decodeRawList(body)
}

func (c *HTTPClient) Artwork(ctx context.Context, id string) ([]Raw, error) {
	body, err := c.doJSON(ctx, "/artwork/"+id, nil)
	if err != nil {
		return nil, err
	}
	return decodeRawList(body)
}

func (c *HTTPClient) UpdatesSince(ctx context.Context, since time.Time) ([]Raw, error) {
	body, err := c.doJSON(ctx, "/updates", url.Values{"since": {fmt.Sprintf("%d", since.Unix())}})
	if err != nil {
		return nil, err
	}
	return decodeRawList(body)
}

var _ Client = (*HTTPClient)(nil)
