// Package token issues and verifies HS256 bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/config"
	"github.com/dgrijalva/jwt-go"
)

const issuer = "finalerp"

var ErrInvalid = errors.New("invalid_token")

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewIssuer(cfg config.Config, clk clock.Clock) *Issuer {
	ttl := time.Duration(cfg.AuthTokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(cfg.AuthJWTSecret), ttl: ttl, clock: clk}
}

// Issue signs a token for the user id (the JWT subject).
func (i *Issuer) Issue(userID, username, role string) (string, time.Time, error) {
	now := i.clock.Now()
	expires := now.Add(i.ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: username,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	})
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	parsed, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalid
	}

	// expiry is checked against the injected clock
	now := i.clock.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyIssuer(issuer, true) || claims.Subject == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}
