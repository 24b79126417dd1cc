package auth

import (
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// TokenFromJWT wraps a JWT, taking the expiry from its exp claim. The
// signature is not verified; the issuing server remains the authority.
func TokenFromJWT(raw string) (Token, error) {
	claims := gojwt.MapClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Token{}, fmt.Errorf("auth: parse jwt: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Token{}, fmt.Errorf("auth: jwt exp claim: %w", err)
	}
	if exp == nil {
		return Token{Value: raw}, nil
	}
	return NewToken(raw, exp.Time), nil
}

// PairFromJWT builds a TokenPair from raw access and refresh JWTs. An empty
// refresh string yields an empty refresh token.
func PairFromJWT(access, refresh string) (TokenPair, error) {
	a, err := TokenFromJWT(access)
	if err != nil {
		return TokenPair{}, err
	}
	pair := TokenPair{Access: a}
	if refresh == "" {
		return pair, nil
	}
	r, err := TokenFromJWT(refresh)
	if err != nil {
		// Opaque refresh tokens are common.
		r = Token{Value: refresh}
	}
	pair.Refresh = r
	return pair, nil
}
