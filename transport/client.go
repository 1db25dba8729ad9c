// Package transport reads the upstream provider's SSE stream and turns it
// into the parsed chunks the translation core consumes. It owns the wire
// concerns the core deliberately stays agnostic to: the HTTP round trip,
// line-oriented SSE framing, and JSON decoding of each frame's payload.
package transport

import (
	"context"
	"net/http"

	"github.com/aiproxy/sseproxy/internal/utils"
)

// Client issues the upstream streaming request. It is safe for concurrent
// use; each Stream call is independent.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient constructs a Client targeting baseURL, authenticating with
// apiKey. A nil httpClient defaults to http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// Stream opens the upstream chat-completion request and returns an
// SSEScanner over its response body, along with the response itself so the
// caller can close its body once done reading. The caller must close
// response.Body.
func (c *Client) Stream(ctx context.Context, body any, headers ...utils.HeaderOption) (*utils.SSEScanner, *http.Response, error) {
	resp, err := utils.DoPostStream(ctx, c.httpClient, c.baseURL, c.apiKey, body, headers...)
	if err != nil {
		return nil, resp, err
	}
	return utils.NewSSEScanner(resp.Body), resp, nil
}
