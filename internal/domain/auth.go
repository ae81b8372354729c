package domain

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the JWT claims issued by the account subsystem.
type AuthClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}
