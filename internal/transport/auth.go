package transport

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest is the body of POST /v1/login: a wallet-signed request
// for a short-lived session token, so cmd/vaultctl doesn't have to
// prompt for a wallet signature on every subsequent call in a single
// operator session.
type LoginRequest struct {
	ActorID         string `json:"actorId"`
	Scheme          string `json:"scheme"`
	WalletPublicKey []byte `json:"walletPublicKey"`
	Signature       []byte `json:"signature"`
	Timestamp       int64  `json:"timestamp"`
	Network         string `json:"network"`
}

// LoginResponse carries the signed session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// sessionClaims is the JWT claim set for a vault session token,
// adapted from the teacher's CustomClaims (which carries an
// AdminTokenID next to jwt.RegisteredClaims) to carry the actor the
// wallet signature proved ownership of instead.
type sessionClaims struct {
	ActorID string `json:"actorId"`
	jwt.RegisteredClaims
}

// SessionAuthenticator issues and verifies HMAC-signed session
// tokens. It is entirely separate from gate.VerifyWalletSignature:
// the wallet signature proves who the caller is once, at login; the
// session token is what every subsequent request actually carries.
type SessionAuthenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionAuthenticator builds a SessionAuthenticator. secret must
// be non-empty in any deployment outside mock/dev mode.
func NewSessionAuthenticator(secret string, ttl time.Duration) *SessionAuthenticator {
	return &SessionAuthenticator{secret: []byte(secret), ttl: ttl}
}

// Issue mints a session token for actorID, valid for a.ttl.
func (a *SessionAuthenticator) Issue(actorID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		ActorID: actorID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Verify parses and validates a bearer token, returning the actor ID
// it was issued for.
func (a *SessionAuthenticator) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("transport: unexpected session token signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", errors.New("transport: invalid session token")
	}
	return claims.ActorID, nil
}

// bearerToken extracts the token from an "Authorization: Bearer ..."
// header, or "" if absent/malformed.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}
