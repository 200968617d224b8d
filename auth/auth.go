package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the signed-in administrator.
type Identity struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator signs in the single site administrator and issues
// HS256 bearer tokens for the admin API.
type Authenticator struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

const issuer = "portfolio-site-backend"

// NewAuthenticator builds an authenticator for the admin account. The
// password hash must be a bcrypt hash.
func NewAuthenticator(email, passwordHash, secret string, ttl time.Duration) (*Authenticator, error) {
	if email == "" || passwordHash == "" {
		return nil, errs.NewServiceConfigError("admin sign-in", "ADMIN_EMAIL/ADMIN_PASSWORD_HASH")
	}
	if len(secret) < 32 {
		return nil, errs.NewServiceConfigError("admin sign-in", "JWT_SECRET (at least 32 bytes)")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Authenticator{
		email:        strings.ToLower(email),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// SignIn checks the credentials and returns a signed token.
func (a *Authenticator) SignIn(email, password string) (string, Identity, error) {
	if !strings.EqualFold(strings.TrimSpace(email), a.email) {
		// keep timing close to the password path
		_ = bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
		return "", Identity{}, errs.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", Identity{}, errs.NewInvalidCredentialsError()
	}

	now := a.now()
	identity := Identity{Email: a.email, ExpiresAt: now.Add(a.ttl).Truncate(time.Second)}
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   identity.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", Identity{}, fmt.Errorf("sign token: %w", err)
	}
	return token, identity, nil
}

// Verify validates a bearer token and returns the identity it carries.
func (a *Authenticator) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, errs.NewMissingTokenError()
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(a.email),
		jwt.WithTimeFunc(a.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Identity{}, errs.NewTokenExpiredError()
	}
	if err != nil {
		return Identity{}, errs.NewInvalidTokenError(err)
	}
	return identityFromClaims(claims), nil
}

// PeekIdentity reads the identity from a token without checking its
// signature. Clients use it to decide whether a stored token is still worth
// presenting; the server always verifies.
func PeekIdentity(token string, now time.Time) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errs.NewInvalidTokenError(err)
	}
	identity := identityFromClaims(claims)
	if !identity.ExpiresAt.IsZero() && !now.Before(identity.ExpiresAt) {
		return nil, nil
	}
	return &identity, nil
}

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func identityFromClaims(claims *jwt.RegisteredClaims) Identity {
	identity := Identity{Email: claims.Subject}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity
}
