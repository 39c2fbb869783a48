// Package wealthsimple provides a client for the Wealthsimple private API.
package wealthsimple

import "time"

// Session represents an authenticated Wealthsimple session.
type Session struct {
	// Token is the full Authorization header value, "Bearer <access_token>".
	Token string

	// OTPClaim is the bypass claim issued after a successful OTP challenge.
	// Presenting it on a later login skips the challenge. Empty until the
	// first challenge has been passed.
	OTPClaim string
}

// Amount is a monetary value from the Wealthsimple API. Amounts arrive as
// decimal strings; the currency is carried through as-is, never converted.
type Amount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Owner describes one holder of an account.
type Owner struct {
	ClientID        string  `json:"client_id"`
	OwnershipType   string  `json:"ownership_type"`
	AccountNickname *string `json:"account_nickname"`
}

// Account represents a Wealthsimple account as returned by the accounts
// listing endpoint.
type Account struct {
	Object            string    `json:"object"`
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Nickname          *string   `json:"nickname"`
	BaseCurrency      string    `json:"base_currency"`
	Status            string    `json:"status"`
	Owners            []Owner   `json:"owners"`
	NetLiquidation    Amount    `json:"net_liquidation"`
	GrossPosition     Amount    `json:"gross_position"`
	TotalDeposits     Amount    `json:"total_deposits"`
	TotalWithdrawals  Amount    `json:"total_withdrawals"`
	WithdrawnEarnings Amount    `json:"withdrawn_earnings"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DisplayName returns the account nickname, or the empty string when the
// account has none.
func (a *Account) DisplayName() string {
	if a.Nickname != nil {
		return *a.Nickname
	}
	return ""
}

// AccountsResponse is the envelope of the accounts listing endpoint.
type AccountsResponse struct {
	Object     string    `json:"object"`
	Offset     int64     `json:"offset"`
	TotalCount int64     `json:"total_count"`
	Results    []Account `json:"results"`
}

// loginRequest is the JSON body of the OAuth token endpoint.
type loginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Scope     string `json:"scope"`
	GrantType string `json:"grant_type"`
	ClientID  string `json:"client_id"`
}

// loginResponse is the success body of the OAuth token endpoint.
type loginResponse struct {
	AccessToken string `json:"access_token"`
}
