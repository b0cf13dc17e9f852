package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tenantadmin/internal/domain"
)

// Principal is the identity of an authenticated request. It is immutable.
type Principal struct {
	userID   string
	tenantID string
	username string
	role     domain.Role
}

func (p Principal) UserID() string      { return p.userID }
func (p Principal) TenantID() string    { return p.tenantID }
func (p Principal) Username() string    { return p.username }
func (p Principal) Role() domain.Role   { return p.role }
func (p Principal) Authenticated() bool { return p.userID != "" && p.role.Valid() }

// Claims is the signed token payload.
type Claims struct {
	UserID   string      `json:"user_id"`
	TenantID string      `json:"tenant_id,omitempty"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

var errInvalidToken = domain.AuthenticationError{Msg: "Token is not valid."}

// Issuer signs tokens for the login endpoints.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the given identity.
func (i *Issuer) Issue(userID, tenantID, username string, role domain.Role) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:   userID,
		TenantID: tenantID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Resolver turns a bearer credential into a Principal.
type Resolver struct {
	secret []byte
	parser *jwt.Parser
}

func NewResolver(secret string) *Resolver {
	return &Resolver{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// Resolve validates an Authorization header value ("Bearer <token>").
// Every failure is an AuthenticationError; the token itself is never part of the error.
func (r *Resolver) Resolve(header string) (Principal, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return Principal{}, errInvalidToken
	}

	var claims Claims
	_, err := r.parser.ParseWithClaims(strings.TrimSpace(token), &claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, domain.AuthenticationError{Msg: "Token has expired."}
		}
		return Principal{}, errInvalidToken
	}

	if claims.UserID == "" || !claims.Role.Valid() {
		return Principal{}, errInvalidToken
	}
	if claims.TenantID == "" && claims.Role != domain.RoleSuperUser {
		return Principal{}, errInvalidToken
	}

	return Principal{
		userID:   claims.UserID,
		tenantID: claims.TenantID,
		username: claims.Username,
		role:     claims.Role,
	}, nil
}
