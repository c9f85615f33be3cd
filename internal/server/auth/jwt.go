// Package auth implements the stateless session-token core: issuing and
// validating signed access/refresh JWTs, and password hashing.
//
// Tokens are self-contained so any instance can validate a request without
// a shared session store; the tradeoff is that revocation is cookie
// clearing only.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/server/models"
)

// Token-type discriminator values. A refresh token must never be accepted
// where an access token is expected, and vice versa.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Principal is the authenticated identity associated with a request,
// derived from a validated token. It exists only for the duration of
// request processing and is always passed explicitly.
type Principal struct {
	UserID string
	Email  string
	Role   models.Role
}

// TokenPair bundles a short-lived access token and a longer-lived refresh
// token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Claims is the JWT payload: registered claims (sub, iat, exp) plus the
// principal's email and role and the token-type discriminator.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
}

// Issuer creates and validates signed session tokens. The signing key is
// process-wide, read-only state loaded at startup.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer constructs an Issuer with the given HMAC secret and token
// lifetimes.
func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueTokenPair mints an access and a refresh token for the principal.
func (i *Issuer) IssueTokenPair(p Principal) (*TokenPair, error) {
	access, err := i.sign(p, tokenTypeAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(p, tokenTypeRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccessToken validates an access token and returns its principal.
// Expired tokens yield common.ErrTokenExpired; any other defect (bad
// signature, malformed structure, wrong token type) yields
// common.ErrInvalidToken.
func (i *Issuer) ParseAccessToken(token string) (*Principal, error) {
	return i.parse(token, tokenTypeAccess)
}

// ParseRefreshToken validates a refresh token and returns its principal.
func (i *Issuer) ParseRefreshToken(token string) (*Principal, error) {
	return i.parse(token, tokenTypeRefresh)
}

func (i *Issuer) sign(p Principal, tokenType string, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email:     p.Email,
		Role:      string(p.Role),
		TokenType: tokenType,
	})
	return token.SignedString(i.secret)
}

func (i *Issuer) parse(tokenString, wantType string) (*Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.TokenType != wantType || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return &Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   models.Role(claims.Role),
	}, nil
}
