package dto

import "time"

// PairDeviceRequest represents the request payload for pairing a device
// against the shared pairing secret
type PairDeviceRequest struct {
	PairingSecret string `json:"pairing_secret" validate:"required,min=8"`
	DeviceName    string `json:"device_name" validate:"required,min=1,max=100"`
}

// PairDeviceResponse carries the issued device token
type PairDeviceResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	DeviceName string    `json:"device_name"`
}
