package wealthsimple

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// OAuth constants used by the official web client.
	oauthScope    = "invest.read mfda.read mercer.read trade.read"
	oauthClientID = "4da53ac2b03225bed1550eba8e4611e086c7b905a3855e6ed12ea08c246758fa"

	// Headers of the OTP challenge protocol.
	otpHeader      = "x-wealthsimple-otp"
	otpClaimHeader = "x-wealthsimple-otp-claim"
	deviceIDHeader = "x-ws-device-id"

	// otpRequired is the otpHeader value signalling an app-based challenge.
	otpRequired = "required; method=app"
)

// OTPPrompter supplies a one-time code when the server demands an OTP
// challenge. It blocks until the code is available.
type OTPPrompter func() (string, error)

// Login performs the password-grant login flow:
//  1. POST the credentials, attaching otpClaim as a header when present.
//  2. On 200, return the session; the claim is unchanged.
//  3. On 401 with the app-OTP challenge header, prompt for a code exactly
//     once and resubmit the same payload with the code and device ID
//     attached. A 200 here yields both the token and a fresh bypass claim
//     from the response headers.
//
// Any other outcome is an AuthError. A 401 without the challenge header
// never prompts.
func (c *Client) Login(username, password, deviceID, otpClaim string, promptOTP OTPPrompter) (*Session, error) {
	payload, err := json.Marshal(loginRequest{
		Username:  username,
		Password:  password,
		Scope:     oauthScope,
		GrantType: "password",
		ClientID:  oauthClientID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding login payload: %w", err)
	}

	req, err := c.newLoginRequest(payload)
	if err != nil {
		return nil, err
	}
	if otpClaim != "" {
		req.Header.Set(otpClaimHeader, otpClaim)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("reading login response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		token, err := bearerToken(body)
		if err != nil {
			return nil, err
		}
		return &Session{Token: token, OTPClaim: otpClaim}, nil

	case resp.StatusCode == http.StatusUnauthorized && resp.Header.Get(otpHeader) == otpRequired:
		return c.loginWithOTP(payload, deviceID, promptOTP)

	default:
		return nil, &AuthError{StatusCode: resp.StatusCode, Headers: resp.Header, Body: string(body)}
	}
}

// loginWithOTP retries the login with a freshly prompted one-time code.
func (c *Client) loginWithOTP(payload []byte, deviceID string, promptOTP OTPPrompter) (*Session, error) {
	if promptOTP == nil {
		return nil, fmt.Errorf("%w: OTP challenge required but no prompter configured", ErrAuthenticationFailed)
	}

	code, err := promptOTP()
	if err != nil {
		return nil, fmt.Errorf("prompting for OTP code: %w", err)
	}

	req, err := c.newLoginRequest(payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set(otpHeader, code+";remember=true")
	req.Header.Set(deviceIDHeader, deviceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OTP login request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("reading OTP login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{StatusCode: resp.StatusCode, Headers: resp.Header, Body: string(body)}
	}

	token, err := bearerToken(body)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, OTPClaim: resp.Header.Get(otpClaimHeader)}, nil
}

// newLoginRequest builds a POST to the OAuth token endpoint with the common
// headers set.
func (c *Client) newLoginRequest(payload []byte) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/oauth/token", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// bearerToken extracts the access token from a successful login body and
// formats it as an Authorization header value.
func bearerToken(body []byte) (string, error) {
	var loginResp loginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if loginResp.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token in response", ErrAuthenticationFailed)
	}
	return "Bearer " + loginResp.AccessToken, nil
}

// readBody drains and closes a response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
