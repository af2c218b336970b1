package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mssola/useragent"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// Claims are the verified token claims this service consumes. The identity
// provider issues them; this service never mints tokens.
type Claims struct {
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
	Scopes []string `json:"scopes"`
	SID    string   `json:"sid"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 tokens from the identity provider.
type TokenVerifier struct {
	signingKey []byte
}

func NewTokenVerifier(signingKey string) *TokenVerifier {
	return &TokenVerifier{signingKey: []byte(signingKey)}
}

func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

type contextKeyAccess struct{}

// ContextKeyAccess is exported for use in handlers.
var ContextKeyAccess = contextKeyAccess{}

// GetAccessContext retrieves the verified access context for the request.
func GetAccessContext(ctx context.Context) (policy.AccessContext, bool) {
	access, ok := ctx.Value(ContextKeyAccess).(policy.AccessContext)
	return access, ok
}

// RequireAuth verifies the bearer token and builds the request's
// AccessContext from its claims plus request metadata. Unknown scope
// strings are dropped during parsing, never passed through.
func RequireAuth(verifier *TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx))
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err, "request_id", GetRequestID(ctx))
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			actorID, err := domain.ParseActorID(claims.Subject)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"error", err, "request_id", GetRequestID(ctx))
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			roles := make([]policy.Role, 0, len(claims.Roles))
			for _, r := range claims.Roles {
				roles = append(roles, policy.Role(r))
			}

			access := policy.AccessContext{
				ActorID:   actorID,
				ActorName: claims.Name,
				Roles:     roles,
				Scopes:    policy.ParseScopes(claims.Scopes),
				IPAddress: clientIP(r),
				SessionID: claims.SID,
				UserAgent: summarizeUserAgent(r.UserAgent()),
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ContextKeyAccess, access)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":"unauthorized","error_description":%q}`, description)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// summarizeUserAgent condenses the UA string to browser and OS for audit
// metadata, keeping raw UA strings out of the trail.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	return fmt.Sprintf("%s %s (%s)", name, version, ua.OS())
}
