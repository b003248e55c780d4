package types

import "github.com/golang-jwt/jwt/v4"

// Claims carries the staff identity resolved by the identity collaborator.
// The core only consumes the opaque actor reference; it never authenticates.
type Claims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	HotelID     uint     `json:"hotel_id"`
	jwt.RegisteredClaims
}
