package wealthsimple

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// defaultBaseURL is the production API root.
	defaultBaseURL = "https://api.production.wealthsimple.com/v1"

	// userAgent is sent on every request. The API rejects some default Go
	// user agents, so we present as curl like the reference client does.
	userAgent = "curl/7.64.1"
)

// Client provides methods for accessing the Wealthsimple private API.
//
// The underlying http.Client has no timeout: poll requests are allowed to
// block until the transport gives up.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Wealthsimple API client. An empty baseURL selects
// the production API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

// GetAccounts retrieves all accounts visible to the session.
//
// A 401 response is reported as ErrSessionExpired so the caller can
// re-authenticate and retry; any other non-200 status is an
// UnexpectedStatusError and should be treated as fatal.
func (c *Client) GetAccounts(session *Session) ([]Account, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/accounts", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", session.Token)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading accounts response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrSessionExpired, string(body))
	default:
		return nil, &UnexpectedStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var accountsResp AccountsResponse
	if err := json.Unmarshal(body, &accountsResp); err != nil {
		return nil, fmt.Errorf("decoding accounts: %w", err)
	}

	return accountsResp.Results, nil
}
