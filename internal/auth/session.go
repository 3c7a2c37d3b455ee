package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const issuer = "ecolife"

// SessionClaims identify an anonymous shopper session
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionTokens issues and verifies signed session tokens. A session owns
// one cart; no account is involved.
type SessionTokens struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewSessionTokens(secretKey string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue starts a new session
func (s *SessionTokens) Issue() (token, sessionID string, expiresAt time.Time, err error) {
	return s.issue(uuid.New().String())
}

// Refresh extends an existing session with a fresh expiry
func (s *SessionTokens) Refresh(sessionID string) (string, time.Time, error) {
	token, _, expiresAt, err := s.issue(sessionID)
	return token, expiresAt, err
}

func (s *SessionTokens) issue(sessionID string) (string, string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, sessionID, expiresAt, nil
}

// Parse verifies a token and returns its session id
func (s *SessionTokens) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

func (s *SessionTokens) TTL() time.Duration {
	return s.ttl
}
