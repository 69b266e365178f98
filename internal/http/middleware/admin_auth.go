package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const staffClaimsKey contextKey = "staffClaims"

// StaffRoles may read dashboards and stats.
var StaffRoles = []string{"admin", "staff"}

// StaffClaims is the HMAC-signed token issued to hospital staff.
type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// StaffJWT guards staff-only endpoints. The token comes from a Bearer
// Authorization header or, for browser websockets, the "token" query parameter.
func StaffJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "staff auth disabled", http.StatusUnauthorized)
				return
			}
			raw := bearerToken(r)
			if raw == "" {
				http.Error(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			var claims StaffClaims
			token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(StaffRoles, claims.Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), staffClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// StaffClaimsFromContext returns the caller's claims if StaffJWT ran.
func StaffClaimsFromContext(ctx context.Context) (StaffClaims, bool) {
	claims, ok := ctx.Value(staffClaimsKey).(StaffClaims)
	return claims, ok
}
