package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/shared"
	"bookreview-backend/internal/shared/response"
	"bookreview-backend/pkg/jwt"
)

const (
	ContextKeyClaims    = "claims"
	ContextKeyPrincipal = "principal"
)

// TokenVerifier is satisfied by *jwt.Manager.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*jwt.Claims, error)
}

// PrincipalLookup resolves a verified uid to the caller's profile.
// It returns shared.ErrPrincipalNotFound when the profile does not exist.
type PrincipalLookup interface {
	LookupPrincipal(ctx context.Context, uid string) (shared.Principal, error)
}

// AuthenticateToken verifies the bearer token and stores its claims.
// Used by routes that must work before a profile exists.
func AuthenticateToken(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := verify(c, verifier)
		if !ok {
			return
		}
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// Authenticate verifies the bearer token and loads the caller's profile.
// The role always comes from the profile, never from the token.
func Authenticate(verifier TokenVerifier, profiles PrincipalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := verify(c, verifier)
		if !ok {
			return
		}

		principal, err := profiles.LookupPrincipal(c.Request.Context(), claims.UID)
		if err != nil {
			if errors.Is(err, shared.ErrPrincipalNotFound) {
				response.Unauthorized(c, "User profile not found")
				return
			}
			log.Error().Err(err).Str("uid", claims.UID).Msg("failed to load principal")
			response.InternalServerError(c)
			c.Abort()
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyPrincipal, principal)
		c.Next()
	}
}

func verify(c *gin.Context, verifier TokenVerifier) (*jwt.Claims, bool) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		response.Unauthorized(c, "Missing or malformed authorization header")
		return nil, false
	}

	claims, err := verifier.VerifyToken(token)
	if err != nil {
		if jwt.IsExpired(err) {
			response.Unauthorized(c, "Token expired")
		} else {
			response.Unauthorized(c, "Invalid token")
		}
		return nil, false
	}

	return claims, true
}

// bearerToken extracts <token> from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetClaims returns the verified token claims set by the auth middlewares.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// GetPrincipal returns the caller set by Authenticate.
func GetPrincipal(c *gin.Context) (shared.Principal, bool) {
	v, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return shared.Principal{}, false
	}
	p, ok := v.(shared.Principal)
	return p, ok
}
