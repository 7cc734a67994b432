// Package middleware provides authentication, logging, metrics and rate
// limiting middleware for the application.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TokenCookie is the cookie that carries the session token.
	TokenCookie = "token"

	tokenIssuer   = "agora-api"
	tokenAudience = "agora-client"
	blacklistKey  = "blacklist:%s"
)

// Claims are the JWT claims issued at login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the token.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid user ID in token")
	}
	return uint(id), nil
}

// Authenticator issues and verifies signed session tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
}

// NewAuthenticator returns an Authenticator. rdb may be nil, in which case
// revoked tokens are not tracked.
func NewAuthenticator(secret string, ttl time.Duration, rdb *redis.Client) *Authenticator {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, redis: rdb}
}

// TTL is the lifetime of issued tokens.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Issue signs a token for the user.
func (a *Authenticator) Issue(userID uint, username string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Parse validates signature, issuer, audience and expiry, then checks the
// revocation list.
func (a *Authenticator) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	if claims.ID != "" && a.redis != nil {
		n, err := a.redis.Exists(ctx, fmt.Sprintf(blacklistKey, claims.ID)).Result()
		if err == nil && n > 0 {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (a *Authenticator) Revoke(ctx context.Context, claims *Claims) error {
	if a.redis == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return a.redis.Set(ctx, fmt.Sprintf(blacklistKey, claims.ID), "1", ttl).Err()
}

// ExtractToken reads the session token from the cookie, falling back to a
// Bearer Authorization header.
func ExtractToken(c *fiber.Ctx) string {
	if t := c.Cookies(TokenCookie); t != "" {
		return t
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Required rejects requests without a valid token with 401 and stores the
// caller in c.Locals("userID") and c.Locals("claims").
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ExtractToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Authorization required"))
		}
		claims, err := a.Parse(c.UserContext(), tokenString)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		userID, err := claims.UserID()
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError(err.Error()))
		}

		setCaller(c, userID, claims)
		return c.Next()
	}
}

// Optional resolves the caller when a valid token is present and never
// rejects the request.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := ExtractToken(c); tokenString != "" {
			if claims, err := a.Parse(c.UserContext(), tokenString); err == nil {
				if userID, err := claims.UserID(); err == nil {
					setCaller(c, userID, claims)
				}
			}
		}
		return c.Next()
	}
}

func setCaller(c *fiber.Ctx, userID uint, claims *Claims) {
	c.Locals("userID", userID)
	c.Locals("claims", claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// CurrentUserID returns the authenticated caller, if any.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}
