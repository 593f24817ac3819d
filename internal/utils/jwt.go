package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenTTL is the fixed lifetime of an identity token.  There is no refresh
// mechanism; a new token requires a new login.
const tokenTTL = time.Hour

// ErrInvalidToken is returned for every token validation failure.  Expired,
// badly signed, wrong-issuer and wrong-audience tokens are deliberately not
// distinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the set of claims embedded in an identity token: the standard
// registered claims (sub, iss, aud, exp, iat) plus the account's email and
// role.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserID returns the subject claim parsed as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// IssueToken builds and signs an HS256 identity token for an account.  The
// subject is the account id, and the token carries the email and role
// claims.  Issuer and audience come from configuration so that validation
// can pin them.  Expiry is one hour from issuance.
func IssueToken(secret, issuer, audience string, userID uuid.UUID, email, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(tokenTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
		Role:  role,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken verifies a raw token string against the signing secret and the
// configured issuer and audience.  Any failure (bad signature, expiry,
// wrong issuer, wrong audience, wrong algorithm) yields ErrInvalidToken.
func ParseToken(secret, issuer, audience, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
