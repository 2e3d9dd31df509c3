package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of a session token when none is configured.
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrSecretRequired  = errors.New("identity: signing secret required")
	ErrAccountRequired = errors.New("identity: account id required")
	ErrInvalidToken    = errors.New("identity: invalid token")
)

// Issuer signs and verifies HS256 session tokens whose subject is the account id.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithIssuerName sets the iss claim; tokens with a different iss are rejected.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) {
		i.issuer = strings.TrimSpace(name)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer builds an Issuer for secret.
func NewIssuer(secret string, opts ...IssuerOption) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	i := &Issuer{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i, nil
}

// Issue returns a signed token for accountID.
func (i *Issuer) Issue(accountID uuid.UUID) (string, error) {
	if accountID == uuid.Nil {
		return "", ErrAccountRequired
	}
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse verifies tokenString and returns the account it was issued for.
func (i *Issuer) Parse(tokenString string) (uuid.UUID, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return uuid.Nil, ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(i.issuer))
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return i.secret, nil
	}, parserOpts...)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	accountID := AccountID(claims.Subject)
	if accountID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return accountID, nil
}
