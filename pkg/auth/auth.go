package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	XUserIDHeader    = "X-User-Id"
	XUserEmailHeader = "X-User-Email"
	XUserNameHeader  = "X-User-Name"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrDomain          = errors.New("email domain is not allowed")
	ErrNoSecret        = errors.New("jwt secret is required")
)

type Config struct {
	Secret       string `envconfig:"AUTH_JWT_SECRET"`
	Issuer       string `envconfig:"AUTH_JWT_ISSUER" default:"identity-provider"`
	Domain       string `envconfig:"AUTH_EMAIL_DOMAIN"`
	TrustHeaders bool   `envconfig:"AUTH_TRUST_HEADERS"`
}

// Validate requires a signing secret even when gateway headers are trusted.
func (c Config) Validate() error {
	if c.Secret == "" {
		return errors.Wrap(ErrNoSecret, "AUTH_JWT_SECRET")
	}
	return nil
}

// Identity is what the identity provider vouches for.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type identityKey struct{}

func SetIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func GetIdentity(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.ID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// CheckDomain rejects emails outside the organization. An empty domain allows all.
func CheckDomain(email, domain string) error {
	if domain == "" {
		return nil
	}
	domain = strings.ToLower(strings.TrimPrefix(domain, "@"))
	if !strings.HasSuffix(strings.ToLower(email), "@"+domain) {
		return errors.Wrapf(ErrDomain, "email %q", email)
	}
	return nil
}

// ParseToken verifies an HS256 token and extracts the identity.
func ParseToken(cfg Config, tokenStr string) (Identity, error) {
	if cfg.Secret == "" {
		return Identity{}, errors.Wrap(ErrUnauthenticated, ErrNoSecret.Error())
	}
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Identity{}, errors.Wrap(ErrUnauthenticated, "invalid token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return Identity{}, errors.Wrap(ErrUnauthenticated, "token without subject or email")
	}
	return Identity{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}

// MintToken signs a token for the identity; used by tooling and tests.
func MintToken(cfg Config, id Identity, now time.Time, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", ErrNoSecret
	}
	claims := Claims{
		Email: id.Email,
		Name:  id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}
