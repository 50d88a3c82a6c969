// Package share signs quiz results into tokens so a result link can be
// reopened without storing anything server side.
package share

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
)

var (
	// ErrInvalidToken covers malformed, tampered and foreign tokens.
	ErrInvalidToken = errors.New("invalid share token")
	// ErrExpiredToken is returned for well-signed tokens past their expiry.
	ErrExpiredToken = errors.New("share token expired")
)

// Claims carries the accumulated user vector of a completed quiz.
type Claims struct {
	Econ          float64 `json:"econ"`
	Social        float64 `json:"social"`
	Env           float64 `json:"env"`
	QuestionCount int     `json:"qc"`
	jwt.RegisteredClaims
}

// Vector returns the user vector stored in the claims.
func (c *Claims) Vector() affinity.Vector {
	return affinity.Vector{Econ: c.Econ, Social: c.Social, Env: c.Env}
}

// Signer issues and verifies HS256 share tokens.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. The secret must not be empty.
func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("share secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("share ttl must be positive, got %s", ttl)
	}
	return &Signer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs the vector and returns the token with its expiry.
func (s *Signer) Issue(v affinity.Vector, questionCount int) (string, time.Time, error) {
	if !finite(v.Econ) || !finite(v.Social) || !finite(v.Env) {
		return "", time.Time{}, fmt.Errorf("cannot share non-finite vector %+v", v)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		Econ:          v.Econ,
		Social:        v.Social,
		Env:           v.Env,
		QuestionCount: questionCount,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign share token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies signature, method, issuer and expiry.
func (s *Signer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", ErrExpiredToken, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !finite(claims.Econ) || !finite(claims.Social) || !finite(claims.Env) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
