// Package token signs and verifies the HS256 bearer tokens the API accepts.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	// DefaultIssuer is the iss claim on tokens minted by assistantctl
	DefaultIssuer = "talk-to-my-ai"
	// DefaultTTL is the lifetime of a minted token
	DefaultTTL = 24 * time.Hour
	// clockSkew tolerates small drift between the issuing host and the API
	clockSkew = 30 * time.Second
)

var (
	// ErrEmptySecret is returned when no signing secret is configured
	ErrEmptySecret = errors.New("token secret is empty")
	// ErrMissingSubject is returned for tokens without a sub claim
	ErrMissingSubject = errors.New("token missing sub claim")
)

// Verifier validates HS256 tokens and extracts their claims
type Verifier struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewVerifier creates a verifier. When issuer is non-empty the iss claim must match it.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Verifier{key: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Verify checks the signature and expiry of raw and returns its claims
func (v *Verifier) Verify(raw string) (*models.JWTClaims, error) {
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, v.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(v.now)),
		jwt.WithAcceptableSkew(clockSkew),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	tok, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}
	if tok.Subject() == "" {
		return nil, ErrMissingSubject
	}

	claims := &models.JWTClaims{
		Sub:   tok.Subject(),
		Email: stringClaim(tok, "email"),
		Name:  stringClaim(tok, "name"),
		Iss:   tok.Issuer(),
	}
	if exp := tok.Expiration(); !exp.IsZero() {
		claims.Exp = exp.Unix()
	}
	if iat := tok.IssuedAt(); !iat.IsZero() {
		claims.Iat = iat.Unix()
	}
	return claims, nil
}

func stringClaim(tok jwt.Token, name string) string {
	v, ok := tok.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Claims describes a token to mint
type Claims struct {
	Subject string
	Email   string
	Name    string
	TTL     time.Duration
}

// Signer mints HS256 tokens for development and service-to-service use
type Signer struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewSigner creates a signer; an empty issuer defaults to DefaultIssuer
func NewSigner(secret, issuer string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Signer{key: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Sign returns a compact serialized token for c
func (s *Signer) Sign(c Claims) (string, error) {
	if c.Subject == "" {
		return "", ErrMissingSubject
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}

	now := s.now()
	b := jwt.NewBuilder().
		Subject(c.Subject).
		Issuer(s.issuer).
		IssuedAt(now).
		Expiration(now.Add(c.TTL))
	if c.Email != "" {
		b = b.Claim("email", c.Email)
	}
	if c.Name != "" {
		b = b.Claim("name", c.Name)
	}
	tok, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}
