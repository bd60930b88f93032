package twitter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/dghubble/oauth1"

	"github.com/patteyb/twitter-interface/internal/config"
)

// REST v1.1 endpoints used by the front-end.
const (
	PathUserTimeline     = "statuses/user_timeline"
	PathFriendsList      = "friends/list"
	PathMessagesReceived = "direct_messages"
	PathMessagesSent     = "direct_messages/sent"
	PathStatusUpdate     = "statuses/update"
)

const (
	maxErrorBodyBytes = 64 << 10
	formContentType   = "application/x-www-form-urlencoded"
)

// APIError describes a non-2xx response.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("twitter api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("twitter api: status %d: code %d: %s", e.StatusCode, e.Code, e.Message)
}

// Client is an OAuth 1.0a signed REST client for a single account.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client from the configured credential bundle.
func NewClient(ctx context.Context, cfg config.TwitterConfig) *Client {
	oauthConfig := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/",
		httpClient: oauthConfig.Client(ctx, token),
	}
}

// Get performs one signed GET and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.endpoint(path)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req)
}

// Post performs one signed form POST. The response body is discarded.
func (c *Client) Post(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", formContentType)

	_, err = c.do(req)
	return err
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + strings.TrimLeft(path, "/") + ".json"
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, parseAPIError(resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.URL.Path, err)
	}
	return body, nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := sonic.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		apiErr.Code = payload.Errors[0].Code
		apiErr.Message = payload.Errors[0].Message
	}
	return apiErr
}
