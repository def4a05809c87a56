package token

import (
	"fmt"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/alexindevs/orgbase/internal/domain"
)

// DefaultTTL matches the historical session lifetime of 70 days.
const DefaultTTL = 70 * 24 * time.Hour

var allowedAlgorithms = []gojose.SignatureAlgorithm{gojose.HS256}

// Claims is an identity payload whose signature and expiry have been
// verified. Only Claims may feed authorization decisions.
type Claims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// UntrustedClaims is a decoded but unverified payload. It exists for
// diagnostics only and is deliberately a distinct type from Claims.
type UntrustedClaims struct {
	UserID string
	Email  string
}

type sessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Issuer signs and verifies session tokens with a shared HMAC secret.
// It is stateless and safe for concurrent use.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer constructs an Issuer. A non-positive ttl falls back to DefaultTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL reports the configured session lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue produces a signed, time-boxed token embedding the user identity.
func (i *Issuer) Issue(user domain.User) (string, error) {
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: i.secret},
		(&gojose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := time.Now().UTC()
	std := gojwt.Claims{
		Subject:  user.ID,
		IssuedAt: gojwt.NewNumericDate(now),
		Expiry:   gojwt.NewNumericDate(now.Add(i.ttl)),
	}
	custom := sessionClaims{UserID: user.ID, Email: user.Email}

	raw, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize token: %w", err)
	}
	return raw, nil
}

// Verify validates the signature and expiry of raw and returns the embedded
// claim. Any failure maps to domain.ErrInvalidToken; callers must treat it
// as an unauthenticated outcome.
func (i *Issuer) Verify(raw string) (Claims, error) {
	parsed, err := gojwt.ParseSigned(raw, allowedAlgorithms)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: parse: %v", domain.ErrInvalidToken, err)
	}

	var std gojwt.Claims
	var custom sessionClaims
	if err := parsed.Claims(i.secret, &std, &custom); err != nil {
		return Claims{}, fmt.Errorf("%w: verify: %v", domain.ErrInvalidToken, err)
	}

	// Zero leeway: a token is invalid the instant its expiry passes.
	if err := std.ValidateWithLeeway(gojwt.Expected{Time: time.Now().UTC()}, 0); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if custom.UserID == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	claims := Claims{
		UserID: custom.UserID,
		Email:  custom.Email,
	}
	if std.IssuedAt != nil {
		claims.IssuedAt = std.IssuedAt.Time()
	}
	if std.Expiry != nil {
		claims.ExpiresAt = std.Expiry.Time()
	}
	return claims, nil
}

// DecodeUnverified extracts the payload without checking the signature.
// The result MUST NOT be trusted for authorization.
func DecodeUnverified(raw string) (UntrustedClaims, error) {
	parsed, err := gojwt.ParseSigned(raw, allowedAlgorithms)
	if err != nil {
		return UntrustedClaims{}, fmt.Errorf("%w: parse: %v", domain.ErrInvalidToken, err)
	}
	var custom sessionClaims
	if err := parsed.UnsafeClaimsWithoutVerification(&custom); err != nil {
		return UntrustedClaims{}, fmt.Errorf("%w: decode: %v", domain.ErrInvalidToken, err)
	}
	return UntrustedClaims{UserID: custom.UserID, Email: custom.Email}, nil
}
