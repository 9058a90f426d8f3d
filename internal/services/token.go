package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOwnerNotConfigured is returned when tokens are requested without an
// owner id or signing secret
var ErrOwnerNotConfigured = errors.New("owner api is not configured")

const tokenTTL = 30 * 24 * time.Hour

// TokenService issues and checks bearer tokens for the owner API
type TokenService struct {
	ownerID   int64
	jwtSecret string
	now       func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(ownerID int64, jwtSecret string) *TokenService {
	return &TokenService{
		ownerID:   ownerID,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

// GenerateJWT signs a token for the owner
func (s *TokenService) GenerateJWT() (string, error) {
	if s.ownerID == 0 || s.jwtSecret == "" {
		return "", ErrOwnerNotConfigured
	}

	now := s.now()
	claims := jwt.MapClaims{
		"owner_id": s.ownerID,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT checks a token and returns the owner id it was issued for
func (s *TokenService) ValidateJWT(tokenString string) (int64, error) {
	if s.jwtSecret == "" {
		return 0, ErrOwnerNotConfigured
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	// numeric claims decode as float64
	raw, ok := claims["owner_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("owner_id not found in token")
	}
	ownerID := int64(raw)
	if ownerID != s.ownerID {
		return 0, fmt.Errorf("token issued for another owner")
	}

	return ownerID, nil
}
