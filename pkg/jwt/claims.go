package jwt

import "github.com/golang-jwt/jwt/v5"

// ServiceClaims are the claims carried by service-to-service tokens.
type ServiceClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}
