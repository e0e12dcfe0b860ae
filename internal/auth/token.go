package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// TerminalClaims identifies a POS terminal session. Subject carries the
// cashier's user id.
type TerminalClaims struct {
	TerminalID string `json:"tid"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// CashierID returns the user id from the subject, 0 when absent.
func (c *TerminalClaims) CashierID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// TokenIssuer signs and verifies the short-lived bearer tokens used by the POS
// shell on /pos routes.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer for the given lifetime. An unset ttl falls
// back to 12 hours; a negative ttl is honoured as-is and yields tokens that
// are already expired.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token binding the cashier to a terminal.
func (t *TokenIssuer) Issue(userID int64, terminalID, role string) (string, error) {
	now := time.Now()
	claims := TerminalClaims{
		TerminalID: terminalID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a signed token.
func (t *TokenIssuer) Verify(tokenString string) (*TerminalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TerminalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", httpx.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*TerminalClaims)
	if !ok || claims.TerminalID == "" {
		return nil, fmt.Errorf("auth: invalid token claims: %w", httpx.ErrUnauthorized)
	}
	return claims, nil
}

type terminalContextKey struct{}

// WithTerminal stores the terminal claims in the context.
func WithTerminal(ctx context.Context, claims *TerminalClaims) context.Context {
	return context.WithValue(ctx, terminalContextKey{}, claims)
}

// TerminalFromContext retrieves the terminal claims, nil when absent.
func TerminalFromContext(ctx context.Context) *TerminalClaims {
	claims, _ := ctx.Value(terminalContextKey{}).(*TerminalClaims)
	return claims
}

// Middleware verifies the Authorization bearer token and injects the terminal
// identity into the request context.
func (t *TokenIssuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		claims, err := t.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithTerminal(r.Context(), claims)))
	})
}
