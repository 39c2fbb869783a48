package wealthsimple

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// loginRecorder captures login requests for assertions.
type loginRecorder struct {
	requests []*http.Request
	bodies   []loginRequest
}

func (lr *loginRecorder) record(r *http.Request) loginRequest {
	var body loginRequest
	json.NewDecoder(r.Body).Decode(&body)
	lr.requests = append(lr.requests, r)
	lr.bodies = append(lr.bodies, body)
	return body
}

func staticOTP(code string) (OTPPrompter, *int) {
	calls := new(int)
	return func() (string, error) {
		*calls++
		return code, nil
	}, calls
}

func TestClient_Login_Success_ReturnsBearerToken(t *testing.T) {
	rec := &loginRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		rec.record(r)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	prompt, calls := staticOTP("000000")

	session, err := client.Login("user@example.com", "hunter2", "device-1", "cached-claim", prompt)
	if err != nil {
		t.Fatalf("Login() error = %v, want nil", err)
	}
	if session.Token != "Bearer tok123" {
		t.Errorf("Token = %q, want %q", session.Token, "Bearer tok123")
	}
	if session.OTPClaim != "cached-claim" {
		t.Errorf("OTPClaim = %q, want unchanged %q", session.OTPClaim, "cached-claim")
	}
	if *calls != 0 {
		t.Errorf("OTP prompt called %d times, want 0", *calls)
	}

	body := rec.bodies[0]
	if body.Username != "user@example.com" || body.Password != "hunter2" {
		t.Errorf("login body credentials = %q/%q", body.Username, body.Password)
	}
	if body.GrantType != "password" {
		t.Errorf("grant_type = %q, want %q", body.GrantType, "password")
	}
	if body.Scope != oauthScope {
		t.Errorf("scope = %q, want %q", body.Scope, oauthScope)
	}
	if body.ClientID != oauthClientID {
		t.Errorf("client_id = %q, want fixed constant", body.ClientID)
	}
	if got := rec.requests[0].Header.Get(otpClaimHeader); got != "cached-claim" {
		t.Errorf("claim header = %q, want %q", got, "cached-claim")
	}
}

func TestClient_Login_WithoutClaim_OmitsClaimHeader(t *testing.T) {
	rec := &loginRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Login("u", "p", "device-1", "", nil); err != nil {
		t.Fatalf("Login() error = %v, want nil", err)
	}

	if _, ok := rec.requests[0].Header[http.CanonicalHeaderKey(otpClaimHeader)]; ok {
		t.Error("claim header present on login without a cached claim")
	}
}

func TestClient_Login_OTPChallenge_PromptsOnceAndRetries(t *testing.T) {
	rec := &loginRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if len(rec.requests) == 1 {
			w.Header().Set(otpHeader, otpRequired)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set(otpClaimHeader, "fresh-claim")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok456"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	prompt, calls := staticOTP("123456")

	session, err := client.Login("u", "p", "device-1", "", prompt)
	if err != nil {
		t.Fatalf("Login() error = %v, want nil", err)
	}
	if *calls != 1 {
		t.Errorf("OTP prompt called %d times, want exactly 1", *calls)
	}
	if len(rec.requests) != 2 {
		t.Fatalf("login requests = %d, want exactly 2", len(rec.requests))
	}

	retry := rec.requests[1]
	if got := retry.Header.Get(otpHeader); got != "123456;remember=true" {
		t.Errorf("OTP header = %q, want %q", got, "123456;remember=true")
	}
	if got := retry.Header.Get(deviceIDHeader); got != "device-1" {
		t.Errorf("device ID header = %q, want %q", got, "device-1")
	}
	// The retry resubmits the same payload.
	if rec.bodies[1] != rec.bodies[0] {
		t.Errorf("retry body = %+v, want same as first attempt %+v", rec.bodies[1], rec.bodies[0])
	}

	if session.Token != "Bearer tok456" {
		t.Errorf("Token = %q, want %q", session.Token, "Bearer tok456")
	}
	if session.OTPClaim != "fresh-claim" {
		t.Errorf("OTPClaim = %q, want %q", session.OTPClaim, "fresh-claim")
	}
}

func TestClient_Login_Unauthorized_WithoutChallengeHeader_FailsWithoutPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	prompt, calls := staticOTP("123456")

	_, err := client.Login("u", "wrong", "device-1", "", prompt)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("Login() error = %v, want ErrAuthenticationFailed", err)
	}
	if *calls != 0 {
		t.Errorf("OTP prompt called %d times, want 0", *calls)
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Login() error = %T, want *AuthError", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", authErr.StatusCode)
	}
	if authErr.Body != `{"error":"invalid_grant"}` {
		t.Errorf("Body = %q, want response body for diagnostics", authErr.Body)
	}
}

func TestClient_Login_OTPRejected_ReturnsAuthError(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Header().Set(otpHeader, otpRequired)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad code"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	prompt, _ := staticOTP("000000")

	_, err := client.Login("u", "p", "device-1", "", prompt)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Login() error = %v, want *AuthError", err)
	}
	if authErr.Body != "bad code" {
		t.Errorf("Body = %q, want %q", authErr.Body, "bad code")
	}
	if requests != 2 {
		t.Errorf("login requests = %d, want 2 (no further retries)", requests)
	}
}

func TestClient_Login_ServerError_ReturnsAuthErrorWithHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "abc")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Login("u", "p", "device-1", "", nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Login() error = %v, want *AuthError", err)
	}
	if authErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", authErr.StatusCode)
	}
	if got := authErr.Headers.Get("X-Request-Id"); got != "abc" {
		t.Errorf("Headers missing diagnostics, X-Request-Id = %q", got)
	}
}
