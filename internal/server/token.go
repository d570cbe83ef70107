package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"reeltrack/internal/cache"
	"reeltrack/internal/middleware"
	"reeltrack/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer     = "reeltrack-api"
	tokenAudience   = "reeltrack-client"
	defaultTokenTTL = 7 * 24 * time.Hour
)

// accessClaims is the payload of every token issued by Register and Login.
type accessClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

func (s *Server) generateToken(userID, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", errors.New("JWT secret not configured")
	}
	ttl := time.Duration(s.config.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := time.Now()
	claims := accessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
}

// parseToken verifies signature, expiry, issuer and audience. The returned
// error is safe to show to the client.
func (s *Server) parseToken(raw string) (*accessClaims, *models.AppError) {
	claims := &accessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenExpired):
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return nil, models.NewUnauthorizedError("Invalid token audience")
	default:
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	return claims, nil
}

func (s *Server) tokenRevoked(ctx context.Context, jti string) bool {
	if jti == "" || s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, cache.TokenBlacklistKey(jti)).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token revocation check failed", "error", err)
		return false
	}
	return n > 0
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthRequired rejects requests without a valid, unrevoked bearer token and
// stores the caller's ID in the "userID" local and the user context.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, appErr := s.parseToken(raw)
		if appErr != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}
		if s.tokenRevoked(c.UserContext(), claims.ID) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		c.Locals("userID", claims.Subject)
		c.Locals("tokenJTI", claims.ID)
		if claims.ExpiresAt != nil {
			c.Locals("tokenExpiresAt", claims.ExpiresAt.Time)
		}
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, claims.Subject))
		return c.Next()
	}
}
