package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid covers bad signatures, malformed tokens and expired tokens alike.
var ErrInvalid = errors.New("invalid session credential")

// DefaultTTL is the absolute validity window of a session credential.
const DefaultTTL = 30 * 24 * time.Hour

// Config configures the issuer. The key is loaded once at startup and never rotated.
type Config struct {
	Key    []byte
	TTL    time.Duration
	Issuer string
	Now    func() time.Time
}

// Claims is the identity bound into a credential.
type Claims struct {
	AccountID string
	ChannelID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Credential is a signed token plus its expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	ChannelID string `json:"channel_id"`
}

// Issuer signs and verifies HS256 session credentials.
type Issuer struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewIssuer validates cfg and builds an issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Key) == 0 {
		return nil, errors.New("session signing key is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{key: cfg.Key, ttl: cfg.TTL, issuer: cfg.Issuer, now: cfg.Now}, nil
}

// Issue signs a credential for accountID valid for the configured TTL.
func (i *Issuer) Issue(accountID, channelID string) (Credential, error) {
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		ChannelID: channelID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return Credential{}, fmt.Errorf("sign session: %w", err)
	}
	return Credential{Token: signed, ExpiresAt: exp}, nil
}

// Verify checks signature and expiry and returns the bound identity.
func (i *Issuer) Verify(token string) (Claims, error) {
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if parsed.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalid)
	}
	if i.issuer != "" && parsed.Issuer != i.issuer {
		return Claims{}, fmt.Errorf("%w: issuer mismatch", ErrInvalid)
	}

	claims := Claims{
		AccountID: parsed.Subject,
		ChannelID: parsed.ChannelID,
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}
