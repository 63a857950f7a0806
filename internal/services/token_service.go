package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ggegelya/expensetracker/internal/config"
	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPairingSecret = errors.New("invalid pairing secret")
	ErrInvalidToken         = errors.New("invalid device token")
	ErrExpiredToken         = errors.New("device token expired")
)

// tokenService pairs devices against the shared pairing secret and issues
// HS256 device tokens for the mutation surface. The secret is held only as a
// bcrypt hash once the service is constructed.
type tokenService struct {
	pairingHash []byte
	signingKey  []byte
	tokenTTL    time.Duration
	issuer      string
}

// NewTokenService creates the device token service
func NewTokenService(cfg *config.SyncConfig) (TokenServiceInterface, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.PairingSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pairing secret: %w", err)
	}

	return &tokenService{
		pairingHash: hash,
		signingKey:  []byte(cfg.SigningKey),
		tokenTTL:    cfg.TokenTTL,
		issuer:      cfg.Issuer,
	}, nil
}

// Pair exchanges the pairing secret for a signed device token
func (s *tokenService) Pair(pairingSecret, deviceName string) (string, time.Time, error) {
	if err := bcrypt.CompareHashAndPassword(s.pairingHash, []byte(pairingSecret)); err != nil {
		return "", time.Time{}, ErrInvalidPairingSecret
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	claims := &models.DeviceClaims{
		DeviceName: deviceName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   deviceName,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign device token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a device token
func (s *tokenService) ValidateToken(tokenString string) (*models.DeviceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.DeviceClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*models.DeviceClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
