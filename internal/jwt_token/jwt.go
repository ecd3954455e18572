// Package jwttoken issues and validates participant bearer tokens.
package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/requestcontext"
)

// ParticipantClaims are the claims carried by a participant access token.
// The participant is identified by the standard subject claim.
type ParticipantClaims struct {
	jwt.RegisteredClaims
}

// JWTService handles participant token creation and validation (HS256).
type JWTService struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey, issuer string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// GenerateToken signs a token whose subject is the participant.
func (s *JWTService) GenerateToken(ctx context.Context, participantID id.ParticipantID) (string, error) {
	if participantID.IsNil() {
		return "", dErrors.Validation("participant_id is required")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := requestcontext.Now(ctx)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ParticipantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   participantID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        hex.EncodeToString(b),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken verifies signature, algorithm, expiry and issuer.
func (s *JWTService) ValidateToken(tokenString string) (*ParticipantClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &ParticipantClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*ParticipantClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Authenticate validates token and returns its subject.
func (s *JWTService) Authenticate(_ context.Context, token string) (id.ParticipantID, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return id.ParticipantID{}, err
	}
	participantID, err := id.ParseParticipantID(claims.Subject)
	if err != nil {
		return id.ParticipantID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return participantID, nil
}
