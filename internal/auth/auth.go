// Package auth provides session management for the Wealthsimple API.
package auth

import (
	"sync"

	"github.com/p7g/wealthsimple-prometheus/internal/wealthsimple"
)

// Manager owns the authentication state that must survive re-logins within
// one process: the credentials, the per-process device identifier, and the
// cached OTP bypass claim. Exactly one session is live at a time; each
// Authenticate call replaces it wholesale.
//
// Credentials are held in memory only and are never persisted.
type Manager struct {
	client    *wealthsimple.Client
	username  string
	password  string
	deviceID  string
	promptOTP wealthsimple.OTPPrompter

	mu       sync.Mutex
	otpClaim string
}

// NewManager creates a session manager. deviceID must stay stable for the
// process lifetime; promptOTP is invoked whenever the server demands an
// OTP challenge.
func NewManager(client *wealthsimple.Client, username, password, deviceID string, promptOTP wealthsimple.OTPPrompter) *Manager {
	return &Manager{
		client:    client,
		username:  username,
		password:  password,
		deviceID:  deviceID,
		promptOTP: promptOTP,
	}
}

// Authenticate performs a login and returns the new session. The cached OTP
// bypass claim is presented on every attempt and replaced when the server
// issues a fresh one, so repeat logins skip the interactive challenge until
// the server rejects the claim.
func (m *Manager) Authenticate() (*wealthsimple.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.client.Login(m.username, m.password, m.deviceID, m.otpClaim, m.promptOTP)
	if err != nil {
		return nil, err
	}

	m.otpClaim = session.OTPClaim
	return session, nil
}

// DeviceID returns the per-process device identifier.
func (m *Manager) DeviceID() string {
	return m.deviceID
}
