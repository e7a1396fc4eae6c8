package jwt

import (
	"errors"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
)

// Verifier validates access tokens presented by clients
type Verifier struct {
	signer  Signer
	issuer  string
	revoked RevokedTokenCache
}

// NewVerifier creates a verifier. revoked may be nil.
func NewVerifier(signer Signer, issuer string, revoked RevokedTokenCache) *Verifier {
	return &Verifier{
		signer:  signer,
		issuer:  issuer,
		revoked: revoked,
	}
}

// Verify parses and validates a raw token.
// An expired token yields ErrTokenExpired, anything else invalid yields ErrInvalidToken.
func (v *Verifier) Verify(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(rawToken, claims, v.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{v.signer.GetSigningMethod().Alg()}),
		jwtlib.WithIssuer(v.issuer),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, apperrors.Wrapf(apperrors.ErrTokenExpired, "verify access token")
		}
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "verify access token: %v", err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	if v.revoked != nil && v.revoked.IsRevoked(claims.ID) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token %s revoked", claims.ID)
	}
	return claims, nil
}

// Revoke blocks a token until its natural expiry
func (v *Verifier) Revoke(claims *Claims) error {
	if v.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return v.revoked.Add(claims.ID, claims.ExpiresAt.Time)
}
