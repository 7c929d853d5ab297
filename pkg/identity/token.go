// Package identity issues and verifies the access tokens that authenticate
// dashboard users. The authenticated user is impersonated against the
// cluster, so the cluster's own authorization decides what each user sees.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoToken      = errors.New("no authentication token provided")
	ErrInvalidToken = errors.New("invalid authentication token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
	ErrMissingClaim = errors.New("token is missing the user claim")
)

// Claims are the JWT claims of an access token.
type Claims struct {
	Email  string   `json:"email,omitempty"`
	Groups []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

// Principal is an authenticated user.
type Principal struct {
	User      string
	Groups    []string
	TokenID   string
	Anonymous bool
}

// AnonymousPrincipal stands in for the caller when tokens are not required
// and none was presented.
func AnonymousPrincipal() *Principal {
	return &Principal{User: "anonymous", Anonymous: true}
}

// TokenManager signs and validates HS256 access tokens.
type TokenManager struct {
	secretKey []byte
	claim     string

	mu            sync.RWMutex
	revokedTokens map[string]time.Time
}

// NewTokenManager creates a token manager. claim selects which claim names
// the user: "sub" (default) or "email".
func NewTokenManager(secretKey, claim string) *TokenManager {
	if claim == "" {
		claim = "sub"
	}
	return &TokenManager{
		secretKey:     []byte(secretKey),
		claim:         claim,
		revokedTokens: make(map[string]time.Time),
	}
}

// Mint issues a token for subject, valid for ttl.
func (tm *TokenManager) Mint(subject, email string, groups []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email:  email,
		Groups: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "kuberift",
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks a token's signature, lifetime and revocation status.
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	tm.mu.RLock()
	_, revoked := tm.revokedTokens[claims.ID]
	tm.mu.RUnlock()
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke rejects a token from now on.
func (tm *TokenManager) Revoke(tokenString string) error {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ID == "" {
		return ErrInvalidToken
	}

	tm.mu.Lock()
	tm.revokedTokens[claims.ID] = time.Now()
	tm.mu.Unlock()
	return nil
}

// CleanupRevokedTokens forgets revocations older than maxAge. Tokens are
// short lived, so old entries only cost memory.
func (tm *TokenManager) CleanupRevokedTokens(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for id, at := range tm.revokedTokens {
		if at.Before(cutoff) {
			delete(tm.revokedTokens, id)
		}
	}
}

// Authenticate validates a bearer token, with or without its "Bearer "
// prefix, and returns the user it names.
func (tm *TokenManager) Authenticate(header string) (*Principal, error) {
	raw := strings.TrimSpace(header)
	if len(raw) >= 6 && strings.EqualFold(raw[:6], "bearer") && (len(raw) == 6 || raw[6] == ' ') {
		raw = strings.TrimSpace(raw[6:])
	}
	if raw == "" {
		return nil, ErrNoToken
	}

	claims, err := tm.Validate(raw)
	if err != nil {
		return nil, err
	}

	user := claims.Subject
	if tm.claim == "email" {
		user = claims.Email
	}
	if user == "" {
		return nil, ErrMissingClaim
	}
	return &Principal{User: user, Groups: claims.Groups, TokenID: claims.ID}, nil
}
