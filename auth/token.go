package auth

import "time"

// Token is a credential value with an optional expiry.
type Token struct {
	Value     string     `json:"value,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewToken creates a token expiring at expiresAt. A zero expiresAt never
// expires.
func NewToken(value string, expiresAt time.Time) Token {
	t := Token{Value: value}
	if !expiresAt.IsZero() {
		t.ExpiresAt = &expiresAt
	}
	return t
}

// IsValid reports whether the token is usable now.
func (t Token) IsValid() bool { return t.IsValidAt(time.Now()) }

// IsValidAt reports whether the token has a value and has not expired at now.
func (t Token) IsValidAt(now time.Time) bool {
	if t.Value == "" {
		return false
	}
	return t.ExpiresAt == nil || now.Before(*t.ExpiresAt)
}

// TokenPair is an access token and the refresh token that renews it. A pair
// is replaced wholesale on refresh.
type TokenPair struct {
	Access  Token `json:"access"`
	Refresh Token `json:"refresh"`
}

// IsAccessValid reports whether the access token is usable now.
func (p TokenPair) IsAccessValid() bool { return p.Access.IsValid() }

// CanRefresh reports whether the refresh token is usable now.
func (p TokenPair) CanRefresh() bool { return p.Refresh.IsValid() }
