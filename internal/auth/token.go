package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ms-servicing/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractTokenFromRequest reads a bearer token from the Authorization header.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 session tokens for customers who log in locally.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (i *Issuer) Issue(c *models.Customer) (string, error) {
	now := i.Now()
	claims := Claims{
		Email: c.Email,
		Role:  c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(c.ID, 10),
			Issuer:    "ms-servicing",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify implements Verifier for tokens minted by Issue.
func (i *Issuer) Verify(_ context.Context, raw string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.Now))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Email == "" {
		return "", errors.New("email claim not found in token")
	}
	return claims.Email, nil
}
