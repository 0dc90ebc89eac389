package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const principalContextKey contextKey = "principal"

// Authenticator validates bearer tokens and resolves the request principal.
type Authenticator struct {
	secret   []byte
	tokenExp time.Duration
}

// NewAuthenticator creates an authenticator with the given HMAC secret.
func NewAuthenticator(secret string, tokenExp time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), tokenExp: tokenExp}
}

// GenerateToken issues a signed token for a user. Used by tooling and tests;
// production tokens come from the identity provider with the same claims.
func (a *Authenticator) GenerateToken(u domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": string(u.Role),
		"exp":  time.Now().Add(a.tokenExp).Unix(),
		"iat":  time.Now().Unix(),
	}
	if u.CompanyID != "" {
		claims["empresa_id"] = u.CompanyID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken validates a token and extracts the principal from its claims.
func (a *Authenticator) ParseToken(tokenString string) (domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	role := domain.Role(roleStr)
	if !role.Valid() {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	p := domain.Principal{ID: sub, Role: role}
	if companyID, ok := claims["empresa_id"].(string); ok {
		p.CompanyID = companyID
	}
	// Technicians and clients are company-scoped; a token without the
	// company claim cannot be mapped to a tenancy scope.
	if p.Role != domain.RoleAdmin && p.CompanyID == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

// Middleware authenticates every request and stores the principal in the
// request context. Requests without a valid bearer token get a 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		p, err := a.ParseToken(tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext extracts the authenticated principal stored by Middleware.
func FromContext(ctx context.Context) (domain.Principal, error) {
	p, ok := ctx.Value(principalContextKey).(domain.Principal)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}
