package twitter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "tweetarchiver/pkg/errors"
	"tweetarchiver/pkg/logger"
	"tweetarchiver/pkg/retry"
)

// Client talks to the Twitter/X API and media CDN
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	retryCfg   *retry.Config
	logger     logger.Logger
}

// NewClient creates a new API client. The cookie values feed the client
// language and CSRF headers; retryCfg governs the TweetDetail fetch only.
func NewClient(timeout time.Duration, cookies Cookies, retryCfg *retry.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers:  RequestHeaders(cookies),
		baseURL:  BaseURL,
		retryCfg: retryCfg,
		logger:   log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBaseURL overrides the TweetDetail endpoint, mainly for tests
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a GET request to the specified URL
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	return c.doRequest(req)
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(url string, target interface{}) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus converts non-200 responses into typed errors. The
// response body is logged for diagnostics before being discarded.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	c.logger.WarnWithFields("upstream returned non-200 status", map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.String(),
		"body":   string(body),
	})

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		// Missing or invalid CSRF token surfaces here. It is reported
		// like any other upstream failure.
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "authentication required",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 500 {
			return &errs.Error{
				Type:    errs.ErrorTypeServerError,
				Message: "server error",
				Code:    resp.StatusCode,
			}
		}
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// FetchTweetDetail fetches the TweetDetail response for a tweet id, retrying
// transient failures per the configured policy
func (c *Client) FetchTweetDetail(tweetID string) (*TweetDetailResponse, error) {
	url := tweetDetailURL(c.baseURL, tweetID)

	c.logger.DebugWithFields("fetching tweet detail", map[string]interface{}{
		"tweet_id": tweetID,
		"url":      url,
	})

	response, err := retry.DoWithResult(func() (*TweetDetailResponse, error) {
		var resp TweetDetailResponse
		if err := c.GetJSON(url, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}, c.retryCfg)
	if err != nil {
		c.logger.ErrorWithFields("failed to fetch tweet detail", map[string]interface{}{
			"tweet_id": tweetID,
			"error":    err.Error(),
		})
		return nil, err
	}

	return response, nil
}

// DownloadMedia downloads a media binary from the given URL. Media fetches
// are deliberately not retried so unreachable assets don't stall the archive.
func (c *Client) DownloadMedia(mediaURL string) ([]byte, error) {
	c.logger.DebugWithFields("downloading media", map[string]interface{}{
		"url": mediaURL,
	})

	resp, err := c.Get(mediaURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to download media: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("media downloaded", map[string]interface{}{
		"url":  mediaURL,
		"size": len(data),
	})

	return data, nil
}
