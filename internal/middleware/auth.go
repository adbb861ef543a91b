// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"
	"qrstudio-backend/pkg/utils"
)

type contextKey string

const identityKey contextKey = "identity"

// Claims are the identity provider's access token claims.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
}

// JWTVerifier validates RS256 tokens against the issuer's JWKS.
type JWTVerifier struct {
	keyfunc jwt.Keyfunc
	options []jwt.ParserOption
}

// NewJWTVerifier starts a background JWKS refresh bound to ctx.
func NewJWTVerifier(ctx context.Context, jwksURL, issuer, audience string) (*JWTVerifier, error) {
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return newJWTVerifier(jwks.Keyfunc, []string{"RS256"}, issuer, audience), nil
}

func newJWTVerifier(kf jwt.Keyfunc, methods []string, issuer, audience string) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &JWTVerifier{keyfunc: kf, options: opts}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (models.Identity, error) {
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, v.keyfunc, v.options...); err != nil {
		return models.Identity{}, err
	}
	if claims.Subject == "" {
		return models.Identity{}, errors.New("token has no subject")
	}
	return models.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

// OptionalAuth lets requests without an Authorization header through as
// guests. A header that is present must carry a valid token.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, false)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, true)
}

func authenticate(verifier TokenVerifier, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					utils.SendErrorResponse(w, r, apperrors.NewUnauthorizedError("authentication token not found"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				utils.SendErrorResponse(w, r, apperrors.NewUnauthorizedError("invalid authorization format. Expected: Bearer <token>"))
				return
			}

			identity, err := verifier.Verify(r.Context(), strings.TrimSpace(tokenString))
			if err != nil {
				utils.SendErrorResponse(w, r, apperrors.NewAppError(
					apperrors.ErrUnauthorized,
					http.StatusUnauthorized,
					"authentication failed",
					err.Error(),
				))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity stores identity in ctx.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the caller's identity; guests get the zero value.
func IdentityFromContext(ctx context.Context) models.Identity {
	identity, _ := ctx.Value(identityKey).(models.Identity)
	return identity
}
