package tokens

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrMalformedToken = errors.New("access token is not a JWT")
	ErrNoExpiry       = errors.New("access token carries no exp claim")
)

type JWTTokenFactory struct {
	Issuer     string
	TokenExp   time.Duration
	SigningKey *rsa.PrivateKey
}

func (tokenFactory *JWTTokenFactory) initClaims(claims map[string]interface{}) map[string]interface{} {
	if claims == nil {
		claims = map[string]interface{}{}
	}

	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(tokenFactory.TokenExp).Unix()
	}

	claims["iss"] = tokenFactory.Issuer

	return claims
}

// CreateUserToken signs an access token for userID the way the device backend issues them
func (tokenFactory *JWTTokenFactory) CreateUserToken(userID string, claims map[string]interface{}) (string, error) {
	claims = tokenFactory.initClaims(claims)
	claims["sub"] = userID

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims(claims))

	return token.SignedString(tokenFactory.SigningKey)
}

// ExpiresAt reads the exp claim of an access token without verifying its signature
func ExpiresAt(accessToken string) (time.Time, error) {
	claims := jwt.MapClaims{}

	if _, _, err := new(jwt.Parser).ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, ErrMalformedToken
	}

	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), nil
	case int64:
		return time.Unix(exp, 0), nil
	default:
		return time.Time{}, ErrNoExpiry
	}
}
