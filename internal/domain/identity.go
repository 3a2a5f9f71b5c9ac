package domain

import "github.com/golang-jwt/jwt/v4"

// DonorClaims is the session token issued by the social login provider.
// Only the handle and avatar are used, to pre-fill the donor's X profile.
type DonorClaims struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
	Picture  string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}
