package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// DeviceClaims are the JWT claims carried by a sync device token. Devices are
// peers of the same ledger, not users: the claims identify which device made a
// change, nothing more.
type DeviceClaims struct {
	DeviceName string `json:"device_name"`
	jwt.RegisteredClaims
}
