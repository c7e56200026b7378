package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"reelscraper/pkg/errors"
	"reelscraper/pkg/logger"
	"reelscraper/pkg/models"
)

// Client fetches single-post data directly over HTTP, optionally
// through a proxy. A fresh transport is built per proxied request so
// rotation never reuses a stale tunnel.
type Client struct {
	timeout time.Duration
	headers map[string]string
	baseURL string
	logger  logger.Logger
}

// NewClient creates a new Instagram data client
func NewClient(timeout time.Duration, userAgent string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	}

	return &Client{
		timeout: timeout,
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
			"Sec-Fetch-Dest":  "document",
			"Sec-Fetch-Mode":  "navigate",
			"Sec-Fetch-Site":  "none",
			"Sec-Fetch-User":  "?1",
		},
		baseURL: BaseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// FetchPost fetches a single post's data by shortcode. An empty proxy
// endpoint means a direct connection.
func (c *Client) FetchPost(ctx context.Context, shortcode, proxy string) (models.Reel, error) {
	requestURL := c.baseURL + postInfoPath(shortcode)

	httpClient, err := c.buildHTTPClient(proxy)
	if err != nil {
		return models.Reel{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return models.Reel{}, errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("fetching post data", map[string]interface{}{
		"shortcode": shortcode,
		"url":       requestURL,
		"proxied":   proxy != "",
	})

	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("post request failed", map[string]interface{}{
			"shortcode": shortcode,
			"error":     err.Error(),
			"duration":  time.Since(start),
		})
		if ctx.Err() != nil {
			return models.Reel{}, errors.Newf(errors.ErrorTypeTimeout, "request cancelled: %v", ctx.Err())
		}
		return models.Reel{}, errors.Newf(errors.ErrorTypeNetwork, "network error: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("post request completed", map[string]interface{}{
		"shortcode": shortcode,
		"status":    resp.StatusCode,
		"duration":  time.Since(start),
	})

	if err := checkResponseStatus(resp); err != nil {
		return models.Reel{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Reel{}, &errors.Error{Type: errors.ErrorTypeNetwork, Code: resp.StatusCode, Message: fmt.Sprintf("failed to read response body: %v", err)}
	}

	return decodePost(shortcode, body, c.logger)
}

// buildHTTPClient constructs a client for one request, wiring the
// proxy endpoint into the transport when given.
func (c *Client) buildHTTPClient(proxy string) (*http.Client, error) {
	client := &http.Client{Timeout: c.timeout}

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, errors.Newf(errors.ErrorTypeInvalidInput, "invalid proxy endpoint %q: %v", proxy, err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return client, nil
}

// checkResponseStatus maps an HTTP status onto a typed error. The
// messages for 401 and 429 deliberately carry the upstream wording so
// signature matching catches them.
func checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return &errors.Error{Type: errors.ErrorTypeRateLimit, Code: resp.StatusCode, Message: "401 Unauthorized"}
	case http.StatusTooManyRequests:
		return &errors.Error{Type: errors.ErrorTypeRateLimit, Code: resp.StatusCode, Message: "429 rate limit exceeded"}
	case http.StatusNotFound:
		return &errors.Error{Type: errors.ErrorTypeNotFound, Code: resp.StatusCode, Message: "post not found"}
	default:
		if resp.StatusCode >= 500 {
			return &errors.Error{Type: errors.ErrorTypeNetwork, Code: resp.StatusCode, Message: fmt.Sprintf("server returned status %d", resp.StatusCode)}
		}
		if resp.StatusCode >= 400 {
			return &errors.Error{Type: errors.ErrorTypeUnknown, Code: resp.StatusCode, Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode)}
		}
		return nil
	}
}

// decodePost parses a post payload into a Reel. A payload that parses
// as JSON but carries a soft rate-limit message still fails with a
// rate-limit error.
func decodePost(shortcode string, body []byte, log logger.Logger) (models.Reel, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	var response PostResponse
	if err := json.Unmarshal(body, &response); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		log.ErrorWithFields("failed to parse post payload", map[string]interface{}{
			"shortcode":    shortcode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		if errors.IsRateLimitSignature(preview) {
			return models.Reel{}, errors.Newf(errors.ErrorTypeRateLimit, "rate limit response: %s", preview)
		}
		return models.Reel{}, errors.Newf(errors.ErrorTypeParsing, "failed to parse post payload: %v", err)
	}

	reel, ok := NodeToReel(response.GraphQL.ShortcodeMedia)
	if !ok {
		if bodyStr := string(body); errors.IsRateLimitSignature(bodyStr) {
			return models.Reel{}, errors.New(errors.ErrorTypeRateLimit, "rate limit response")
		}
		return models.Reel{}, errors.Newf(errors.ErrorTypeParsing, "post payload missing media for %s", shortcode)
	}

	return reel, nil
}
