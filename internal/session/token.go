// Package session manages the process-wide session principal and the JWT
// session tokens that bind subsequent operations to a resolved identity.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/models"
)

// Claims carries the resolved principal inside a session token.
type Claims struct {
	jwt.RegisteredClaims
	Role          models.Role `json:"role"`
	HHNumber      string      `json:"hhNumber"`
	WalletAddress string      `json:"walletAddress"`
}

// GenerateToken mints an HS256 session token for the given identity.
func GenerateToken(id *models.Identity, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		Role:          id.Role,
		HHNumber:      id.HHNumber,
		WalletAddress: id.WalletAddress,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates a session token and returns its claims.
// Expired tokens map to ErrSessionExpired, anything else to ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrSessionExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
