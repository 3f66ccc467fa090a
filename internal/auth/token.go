// Package auth issues and verifies the JWTs that carry a participant's
// pool address, and provides the middleware that attaches the caller
// identity to the request context.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "insurance-pool-service"

// TokenTTL is how long an issued token is accepted.
const TokenTTL = 24 * time.Hour

// Claims are the JWT claims for a pool participant. Address is the identity
// every pool operation is authorized against.
type Claims struct {
	Address  string `json:"address"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for the participant. It returns the token string
// and its unix expiry.
func IssueToken(secret []byte, address, username string) (string, int64, error) {
	expirationTime := time.Now().Add(TokenTTL)
	claims := &Claims{
		Address:  address,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, expirationTime.Unix(), nil
}

// ParseToken verifies a token string and returns its claims.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %v", err)
	}
	if claims.Address == "" {
		return nil, fmt.Errorf("token has no address claim")
	}
	return claims, nil
}
